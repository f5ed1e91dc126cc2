package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apillai/callwatch"
	"github.com/apillai/callwatch/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadConfig loads the config file named by the command's --config flag,
// or returns built-in defaults when the flag is unset. The default link is
// filled in so every subcommand sees the same tracked set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configFile == "" {
		cfg, err = config.Parse(nil)
	} else {
		cfg, err = config.Load(configFile)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DefaultLink == "" {
		cfg.DefaultLink = callwatch.DefaultLink
	}
	return cfg, nil
}

// serveCmd starts the tracker and the dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start tracking and the dashboard server",
	Long: `Start the CallWatch tracker and dashboard server.

The server will:
  - Load configuration from the specified YAML file (or use defaults)
  - Probe all tracked links immediately, then at the configured interval
  - Append each observation to the link's CSV history file
  - Serve the dashboard UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  callwatch serve
  callwatch serve -c config.yaml
  callwatch serve --config /etc/callwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"data_dir", cfg.DataDir,
		"poll_interval", cfg.PollInterval.Duration().String(),
	)
	logger.Info("starting server", "port", cfg.Port)

	// convert config to SDK options
	opts := append(config.BuildOptions(cfg), callwatch.WithLogger(logger))

	cw, err := callwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create CallWatch: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- cw.Start(ctx)
	}()

	// wait for server to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
