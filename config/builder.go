package config

import (
	"github.com/apillai/callwatch"
)

// BuildOptions converts parsed configuration into SDK options for
// [callwatch.New].
//
// Only fields that were set (or defaulted by [Parse]) are translated, so the
// SDK's own defaults still apply to anything the file leaves out.
func BuildOptions(cfg *Config) []callwatch.Option {
	opts := []callwatch.Option{
		callwatch.WithPort(cfg.Port),
		callwatch.WithPollInterval(cfg.PollInterval.Duration()),
		callwatch.WithProbeTimeout(cfg.ProbeTimeout.Duration()),
		callwatch.WithDataDir(cfg.DataDir),
	}

	if cfg.Title != "" {
		opts = append(opts, callwatch.WithTitle(cfg.Title))
	}
	if cfg.DefaultLink != "" {
		opts = append(opts, callwatch.WithDefaultLink(cfg.DefaultLink))
	}
	if cfg.Selector != "" {
		opts = append(opts, callwatch.WithSelector(cfg.Selector))
	}

	return opts
}
