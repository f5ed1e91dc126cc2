package callwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/apillai/callwatch/dashboard"
	"github.com/apillai/callwatch/internal/probe"
	"github.com/apillai/callwatch/internal/registry"
	"github.com/apillai/callwatch/internal/scheduler"
	"github.com/apillai/callwatch/internal/server"
	"github.com/apillai/callwatch/internal/store"
)

// DefaultLink is the link seeded into the tracked set when none is
// configured and the links file is missing or empty. Override it with
// [WithDefaultLink].
const DefaultLink = "https://www.astroyogi.com/astrologer/expert/saalivaagana.aspx"

const (
	defaultPollInterval = 60 * time.Second
	defaultPort         = 8080
	defaultDataDir      = "link_tracking_data"

	linksFileName     = "all_links.txt"
	heartbeatFileName = "heartbeat.txt"
)

// CallWatch is the main orchestrator for link probing and dashboard serving.
//
// CallWatch coordinates the headless-browser probing of tracked profile
// links, appends the observed availability signals to per-link CSV history
// files, maintains a heartbeat file, and serves a dashboard over HTTP. It is
// created using [New] with functional options and started with
// [CallWatch.Start].
//
// The typical lifecycle is:
//
//	cw, err := callwatch.New(callwatch.WithDataDir("/var/lib/callwatch"))
//	if err != nil {
//	    slog.Error("failed to create callwatch", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	cw.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type CallWatch struct {
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

// New creates a new [CallWatch] instance with the given options.
//
// All options have sensible defaults:
//   - Poll interval: 60 seconds
//   - Probe timeout: 10 seconds
//   - Port: 8080
//   - Data directory: "link_tracking_data"
//   - Selector: "button.profile_green_btn"
//
// Returns an error if any option is invalid or if the probe timeout exceeds
// the poll interval.
//
// Example:
//
//	cw, err := callwatch.New(
//	    callwatch.WithPollInterval(2 * time.Minute),
//	    callwatch.WithPort(9090),
//	)
func New(opts ...Option) (*CallWatch, error) {
	cfg := &cwConfig{
		port:         defaultPort,
		pollInterval: defaultPollInterval,
		probeTimeout: probe.DefaultTimeout,
		dataDir:      defaultDataDir,
		defaultLink:  DefaultLink,
		selector:     probe.DefaultSelector,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// a probe budget longer than the cycle interval would make cycles overrun
	if cfg.probeTimeout > cfg.pollInterval {
		return nil, fmt.Errorf("probe timeout %s exceeds poll interval %s", cfg.probeTimeout, cfg.pollInterval)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CallWatch{
		title:                cfg.title,
		port:                 cfg.port,
		pollInterval:         cfg.pollInterval,
		probeTimeout:         cfg.probeTimeout,
		dataDir:              cfg.dataDir,
		defaultLink:          cfg.defaultLink,
		selector:             cfg.selector,
		logger:               logger,
		browser:              cfg.browser,
		observationCallbacks: cfg.observationCallbacks,
	}, nil
}

// Start begins probing tracked links and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The data directory is created if it does not exist
//   - All tracked links are probed immediately, then at the configured interval
//   - Each observation is appended to the link's CSV history file
//   - The heartbeat file is rewritten after every cycle
//   - The dashboard is available at http://localhost:<port>
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	cw.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the data directory
// cannot be created or the HTTP server fails to start.
func (cw *CallWatch) Start(ctx context.Context) error {
	cw.logger.Info("callwatch starting", "data_dir", cw.dataDir)
	cw.logger.Info("polling configured", "interval", cw.pollInterval.String(), "probe_timeout", cw.probeTimeout.String())
	cw.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", cw.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	events, err := store.NewEventStore(cw.dataDir)
	if err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}
	heartbeat := store.NewHeartbeatStore(filepath.Join(cw.dataDir, heartbeatFileName))
	reg := registry.New(filepath.Join(cw.dataDir, linksFileName), cw.defaultLink)

	browser := cw.browser
	if browser == nil {
		browser = probe.NewChromeBrowser()
	}
	prober := probe.NewProber(browser, cw.selector, cw.probeTimeout, cw.logger)

	// start the polling scheduler
	sched := scheduler.New(reg, prober, events, heartbeat, cw.pollInterval, cw.logger)
	sched.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range sched.Results() {
			// the observation is already durable; callbacks see persisted state
			if len(cw.observationCallbacks) > 0 {
				obs := eventToObservation(ev)
				for _, cb := range cw.observationCallbacks {
					invokeCallbackSafe(cb, obs, cw.logger)
				}
			}
		}
	}()

	// cleanup function ensures the scheduler is stopped and all results are processed
	cleanup := func() {
		sched.Stop() // closes results channel
		wg.Wait()    // wait for all results to be processed
	}

	// start the HTTP server
	httpServer := server.NewServer(reg, events, heartbeat, cw.port, dashboard.Assets, cw.title, cw.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	cw.logger.Info("callwatch stopped")
	return nil
}

// DataDir returns the configured data directory.
func (cw *CallWatch) DataDir() string {
	return cw.dataDir
}

// Port returns the configured HTTP port for the dashboard server.
func (cw *CallWatch) Port() int {
	return cw.port
}

// PollInterval returns the configured interval between polling cycles.
func (cw *CallWatch) PollInterval() time.Duration {
	return cw.pollInterval
}

// LinksPath returns the path of the tracked links file inside the data
// directory. The file may not exist until the first link is added.
func (cw *CallWatch) LinksPath() string {
	return filepath.Join(cw.dataDir, linksFileName)
}

// HeartbeatPath returns the path of the heartbeat file inside the data
// directory.
func (cw *CallWatch) HeartbeatPath() string {
	return filepath.Join(cw.dataDir, heartbeatFileName)
}

// invokeCallbackSafe calls an observation callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Observation), obs Observation, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("observation callback panicked",
				"panic", r,
				"link", obs.Link,
			)
		}
	}()
	cb(obs)
}
