// Package callwatch tracks the call availability of web profile pages by
// probing them with a headless browser and recording the results to plain
// files.
//
// CallWatch is designed as an SDK-first library: applications configure a
// watcher programmatically via functional options and run it as part of
// their own process. Every tracked link is probed once per cycle, the two
// availability signals found on the page are appended to a per-link CSV
// history file, and a heartbeat file records cycle progress. A small HTTP
// dashboard serves the persisted histories.
//
// # Quick Start
//
// Create a watcher and start it with graceful shutdown:
//
//	cw, _ := callwatch.New(callwatch.WithDataDir("/var/lib/callwatch"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	cw.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// CallWatch uses the functional options pattern for configuration:
//
//	cw, err := callwatch.New(
//	    callwatch.WithPollInterval(2 * time.Minute),
//	    callwatch.WithProbeTimeout(15 * time.Second),
//	    callwatch.WithPort(9090),
//	    callwatch.WithSelector("button.profile_green_btn"),
//	)
//
// # File Layout
//
// All state lives under the configured data directory, in formats stable
// enough for external tools to consume directly:
//
//   - all_links.txt: one tracked URL per line
//   - heartbeat.txt: completed cycle count and last poll timestamp
//   - one CSV file per link: datetime, available_for_call, on_call
//
// # Architecture
//
// CallWatch consists of several internal packages (under internal/):
//
//   - internal/probe: Headless-browser page probing and signal extraction
//   - internal/registry: The tracked links file
//   - internal/store: CSV event histories and the heartbeat file
//   - internal/scheduler: The poll-record-sleep loop
//   - internal/aggregate: Hourly, daily and weekday availability summaries
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package callwatch
