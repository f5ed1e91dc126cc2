package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultSelector matches the interactive controls whose labels carry
	// the availability signals.
	DefaultSelector = "button.profile_green_btn"

	// DefaultTimeout bounds a whole probe: session start, navigation, and
	// the wait for controls to render.
	DefaultTimeout = 10 * time.Second
)

// ErrTimeout reports that the wait condition was not satisfied within the
// probe's bound. It is a transient per-cycle miss, not data.
var ErrTimeout = errors.New("probe timed out")

// Signals holds the two boolean availability signals read from a page.
type Signals struct {
	// AvailableForCall is set when any matching control's label contains
	// "call".
	AvailableForCall bool

	// OnCall is set when any matching control's label contains "join q"
	// or "joinq".
	OnCall bool
}

// Result is the outcome of probing a single link.
//
// Result is a two-variant value: when Err is nil the probe succeeded and
// Signals is valid; when Err is non-nil the probe failed and Signals must be
// ignored. The scheduler logs nothing to the event store for a failed probe.
type Result struct {
	// Link is the URL that was probed.
	Link string

	// Signals are the extracted availability signals. Only valid when Err
	// is nil.
	Signals Signals

	// Elapsed is the total time the probe took, including browser startup.
	Elapsed time.Duration

	// Err is the failure cause, or nil on success. Timeouts satisfy
	// errors.Is(Err, ErrTimeout).
	Err error
}

// Failed reports whether the probe produced no usable observation.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Prober runs bounded availability probes through a [Browser].
type Prober struct {
	browser  Browser
	selector string
	timeout  time.Duration
	logger   *slog.Logger

	// extract is swapped in tests to exercise panic containment.
	extract func(labels []string) Signals
}

// NewProber creates a [Prober] that probes through browser.
//
// An empty selector defaults to [DefaultSelector]; a non-positive timeout
// defaults to [DefaultTimeout]; a nil logger defaults to [slog.Default].
func NewProber(browser Browser, selector string, timeout time.Duration, logger *slog.Logger) *Prober {
	if selector == "" {
		selector = DefaultSelector
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		browser:  browser,
		selector: selector,
		timeout:  timeout,
		logger:   logger,
		extract:  ExtractSignals,
	}
}

// Probe visits link in a fresh browser session and extracts the two
// availability signals.
//
// Probe always returns a [Result]; failures are captured in the Err field
// rather than returned separately. The session is closed on every exit path,
// success or failure.
func (p *Prober) Probe(ctx context.Context, link string) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := Result{Link: link}
	fail := func(err error) Result {
		res.Err = p.timeoutOr(ctx, err)
		res.Elapsed = time.Since(start)
		return res
	}

	sess, err := p.browser.NewSession(ctx)
	if err != nil {
		return fail(fmt.Errorf("start session: %w", err))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			p.logger.Warn("browser session close failed", "link", link, "error", err)
		}
	}()

	if err := sess.Navigate(link); err != nil {
		return fail(fmt.Errorf("navigate: %w", err))
	}

	if err := sess.WaitVisible(p.selector); err != nil {
		return fail(fmt.Errorf("wait for controls: %w", err))
	}

	labels, err := sess.Texts(p.selector)
	if err != nil {
		return fail(fmt.Errorf("read control labels: %w", err))
	}

	signals, err := p.safeExtract(labels)
	if err != nil {
		return fail(err)
	}

	res.Signals = signals
	res.Elapsed = time.Since(start)
	return res
}

// timeoutOr folds a context deadline into [ErrTimeout] so callers can report
// timeouts distinctly from other probe failures.
func (p *Prober) timeoutOr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// safeExtract runs signal extraction with panic recovery.
// If extraction panics, the full stack trace is logged with a correlation ID
// and the probe degrades to a failure carrying that ID.
func (p *Prober) safeExtract(labels []string) (signals Signals, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			p.logger.Error("signal extraction panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			signals = Signals{}
			err = fmt.Errorf("signal extraction panic (correlation_id: %s)", correlationID)
		}
	}()
	return p.extract(labels), nil
}

// ExtractSignals derives the availability signals from control label text.
//
// Labels are normalized (trimmed, lower-cased) before matching, and matches
// OR across all labels. The substring match is deliberately tolerant: the
// upstream label text is not a contract this system controls, so partial
// matches are how the probe survives layout drift.
func ExtractSignals(labels []string) Signals {
	var s Signals
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if strings.Contains(label, "call") {
			s.AvailableForCall = true
		}
		if strings.Contains(label, "join q") || strings.Contains(label, "joinq") {
			s.OnCall = true
		}
	}
	return s
}
