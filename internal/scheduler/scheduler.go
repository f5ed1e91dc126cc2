package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apillai/callwatch/internal/probe"
	"github.com/apillai/callwatch/internal/registry"
	"github.com/apillai/callwatch/internal/store"
)

// DefaultInterval is the pause between polling cycles.
const DefaultInterval = 60 * time.Second

// Prober is the probing capability the scheduler drives, satisfied by
// [probe.Prober] and by fakes in tests.
type Prober interface {
	Probe(ctx context.Context, link string) probe.Result
}

// Event is emitted on the results channel for every successful observation.
type Event struct {
	// Link is the probed URL.
	Link string

	// Observation is the recorded sample, already durable in the event
	// store by the time the Event is emitted.
	Observation store.Observation
}

// Scheduler runs the endless poll-log-sleep loop.
//
// The loop has no terminal state by design: it monitors continuously until
// the host process stops, via [Scheduler.Stop] or context cancellation.
// All lifecycle methods are safe for concurrent use.
type Scheduler struct {
	registry  *registry.Registry
	prober    Prober
	events    *store.EventStore
	heartbeat *store.HeartbeatStore
	interval  time.Duration
	logger    *slog.Logger
	results   chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	// cycles is the in-memory cycle counter, owned by the loop goroutine
	// after being seeded from the persisted heartbeat in Start.
	cycles int
}

// New creates a [Scheduler]. A non-positive interval defaults to
// [DefaultInterval]; a nil logger defaults to [slog.Default].
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop]. Successful observations are available via
// [Scheduler.Results].
func New(reg *registry.Registry, p Prober, events *store.EventStore, heartbeat *store.HeartbeatStore, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		registry:  reg,
		prober:    p,
		events:    events,
		heartbeat: heartbeat,
		interval:  interval,
		logger:    logger,
		results:   make(chan Event, 16),
	}
}

// Results returns a receive-only channel of successful observations.
//
// The channel is closed when the scheduler stops. Consumers should read
// until it is closed to receive every observation.
func (s *Scheduler) Results() <-chan Event {
	return s.results
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The loop runs one cycle
// right away, then repeats at the configured interval until Stop is called
// or ctx is cancelled. If ctx is nil, context.Background() is used.
//
// Start is idempotent; calls after the first are no-ops, so repeated
// initialization of the host process cannot spawn a second loop. If Stop
// was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	// resume the persisted count so poll_count stays monotonic across
	// process restarts
	if count, _, ok := s.heartbeat.Read(); ok {
		s.cycles = count
	}

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		s.runCycle(loopCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.runCycle(loopCtx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight cycle to finish.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op. After Stop returns, the results channel is closed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure the channel is closed even if Start was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// runCycle executes one full pass: reload the registry, probe every link in
// order, log successes, then advance the heartbeat exactly once.
//
// A failed probe is skipped, never aborting the cycle for the other links.
// Links added to the registry mid-cycle are observed on the next reload.
func (s *Scheduler) runCycle(ctx context.Context) {
	links := s.registry.Load()
	s.logger.Debug("cycle starting", "links", len(links))

	for _, link := range links {
		if ctx.Err() != nil {
			return
		}

		res := s.prober.Probe(ctx, link)
		if res.Failed() {
			s.logger.Warn("probe failed, skipping log",
				"link", link,
				"elapsed_ms", res.Elapsed.Milliseconds(),
				"error", res.Err,
			)
			continue
		}

		obs := store.Observation{
			Timestamp:        time.Now(),
			AvailableForCall: res.Signals.AvailableForCall,
			OnCall:           res.Signals.OnCall,
		}
		if err := s.events.Append(link, obs); err != nil {
			s.logger.Error("event append failed", "link", link, "error", err)
			continue
		}

		s.logger.Debug("observation recorded",
			"link", link,
			"available_for_call", obs.AvailableForCall,
			"on_call", obs.OnCall,
			"elapsed_ms", res.Elapsed.Milliseconds(),
		)

		select {
		case s.results <- Event{Link: link, Observation: obs}:
		case <-ctx.Done():
			return
		}
	}

	s.cycles++
	completed := time.Now()
	if err := s.heartbeat.Write(s.cycles, completed); err != nil {
		s.logger.Error("heartbeat write failed", "error", err)
	}
	s.logger.Info("cycle complete",
		"cycle", s.cycles,
		"completed_at", completed.Format(store.TimeLayout),
	)
}
