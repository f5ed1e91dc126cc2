package callwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apillai/callwatch/internal/probe"
	"github.com/apillai/callwatch/internal/registry"
)

// cwConfig holds mutable state during CallWatch construction.
type cwConfig struct {
	title                string
	port                 int
	pollInterval         time.Duration
	probeTimeout         time.Duration
	dataDir              string
	defaultLink          string
	selector             string
	logger               *slog.Logger
	browser              probe.Browser
	observationCallbacks []func(Observation)
}

// Option is a function that configures a [CallWatch] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithPort], [WithPollInterval], [WithProbeTimeout],
// [WithDataDir], [WithDefaultLink], [WithSelector], [WithTitle],
// [WithLogger], [WithBrowser], [WithObservationCallback].
type Option func(*cwConfig) error

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *cwConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithPollInterval sets how often all tracked links are probed.
//
// Each polling cycle probes every tracked link sequentially, then records
// a heartbeat. Defaults to 60 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *cwConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithProbeTimeout sets the per-link budget for a single browser probe.
//
// The timeout covers page navigation plus waiting for the status element
// to become visible. Defaults to 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *cwConfig) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		cfg.probeTimeout = d
		return nil
	}
}

// WithDataDir sets the directory holding all persisted state: the tracked
// links file, the heartbeat file, and one CSV history file per link.
//
// The directory is created on [CallWatch.Start] if it does not exist.
// Defaults to "link_tracking_data" if not specified.
//
// Returns an error if the path is empty.
func WithDataDir(dir string) Option {
	return func(cfg *cwConfig) error {
		if dir == "" {
			return errors.New("data directory cannot be empty")
		}
		cfg.dataDir = dir
		return nil
	}
}

// WithDefaultLink sets the link seeded into the tracked set when the links
// file is missing or empty.
//
// Returns an error if the URL is empty or not http/https.
func WithDefaultLink(link string) Option {
	return func(cfg *cwConfig) error {
		if err := registry.ValidateURL(link); err != nil {
			return fmt.Errorf("default link: %w", err)
		}
		cfg.defaultLink = link
		return nil
	}
}

// WithSelector sets the CSS selector matched against each probed page to
// find the status elements whose text carries the availability signals.
//
// Defaults to "button.profile_green_btn" if not specified.
func WithSelector(selector string) Option {
	return func(cfg *cwConfig) error {
		if selector == "" {
			return errors.New("selector cannot be empty")
		}
		cfg.selector = selector
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "callwatch".
func WithTitle(title string) Option {
	return func(cfg *cwConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the CallWatch instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *cwConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// Browser abstracts the renderer used to probe tracked pages. The default
// implementation launches headless Chrome; supply a custom Browser via
// [WithBrowser] to probe without one.
type Browser = probe.Browser

// Session is a single page lifetime opened by a [Browser].
type Session = probe.Session

// WithBrowser sets the browser used to render tracked pages.
//
// If not specified, a headless Chrome browser is launched via chromedp.
// Supplying a custom [Browser] is primarily useful in tests and demos,
// where a fake browser avoids any dependency on a local Chrome install.
//
// Returns an error if the browser is nil.
func WithBrowser(b Browser) Option {
	return func(cfg *cwConfig) error {
		if b == nil {
			return errors.New("browser cannot be nil")
		}
		cfg.browser = b
		return nil
	}
}

// WithObservationCallback registers a function to be called for every
// recorded observation.
//
// The callback receives an [Observation] containing the link, the probe
// timestamp, and both availability signals. Multiple callbacks may be
// registered by calling WithObservationCallback multiple times; they execute
// in registration order.
//
// Callbacks fire after the observation has been appended to the link's CSV
// history, so a callback that reads persisted state sees its own event.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine. Blocking callbacks will delay
// subsequent observation processing.
//
// Callbacks are invoked synchronously from a single goroutine. Panics within
// callbacks are recovered and logged; they do not crash the scheduler.
//
// Nil callbacks are silently ignored.
func WithObservationCallback(cb func(Observation)) Option {
	return func(cfg *cwConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.observationCallbacks = append(cfg.observationCallbacks, cb)
		return nil
	}
}
