// Package server provides the HTTP server for the callwatch dashboard and API.
//
// This package is internal to callwatch and handles all HTTP concerns:
//
//   - Dashboard serving: the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: tracked links, per-link history and aggregates, heartbeat
//   - Server-Sent Events: periodic snapshots at "/api/sse"
//
// The server never shares memory with the polling engine. Every response is
// computed by re-reading the persisted files (link list, per-link event
// files, heartbeat), which is the system's decoupling mechanism: readers
// always see the last durably written state. The single write operation,
// registering a link, appends to the link list file and is observed by the
// scheduler at its next cycle boundary.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the callwatch library should not need to interact with this
// package directly. The server is started automatically by CallWatch.
package server
