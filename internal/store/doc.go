// Package store provides the file-backed persistence layer for callwatch.
//
// This package is internal to callwatch and manages two durable artifacts:
//
//   - [EventStore]: one append-only CSV file per tracked link, holding the
//     full observation history for that link
//   - [HeartbeatStore]: a small text file recording the completed cycle count
//     and the last cycle completion time
//
// Both stores are designed so that an independent reader process (the
// dashboard) can consume the files without sharing memory with the writer.
// Event files are logically append-only; the heartbeat file is replaced
// atomically via temp-file-plus-rename so readers never observe a torn write.
//
// Read paths degrade rather than fail: a missing or malformed event file
// reads as empty history, and a missing or corrupt heartbeat file reads as
// "no heartbeat yet".
//
// Users of the callwatch library should not need to interact with this
// package directly. Storage is managed internally by CallWatch.
package store
