// Package scheduler runs the polling-and-logging loop for callwatch.
//
// This package is internal to callwatch. The scheduler owns the system's
// only write path: once per cycle it reloads the link registry, probes every
// link strictly sequentially in registry order, appends an observation for
// each successful probe, then advances the durable heartbeat exactly once
// and sleeps until the next cycle.
//
// Failure containment is the core contract: one link's probe failure is
// logged and skipped, never aborting the cycle for the other links, and the
// heartbeat advances whether or not any probe succeeded.
//
// Start is idempotent by construction (a start-once guard checked under a
// mutex before the loop goroutine is spawned), so repeated initialization of
// the host process cannot spawn a second loop.
//
// Users of the callwatch library should not need to interact with this
// package directly. The loop is managed by CallWatch.
package scheduler
