package probe

import "context"

// Browser creates isolated page sessions for probing.
//
// Implementations must not share cookies or other state between sessions;
// every probe is independent.
type Browser interface {
	// NewSession starts a fresh browser session. The session inherits the
	// lifetime of ctx: when ctx is cancelled or its deadline passes, pending
	// session operations fail and the underlying browser is released.
	NewSession(ctx context.Context) (Session, error)
}

// Session is a single headless page session.
//
// All methods are bounded by the context the session was created with.
// Close must be called on every session, on every outcome.
type Session interface {
	// Navigate loads the page at url and returns once the initial page
	// load completes.
	Navigate(url string) error

	// WaitVisible blocks until at least one element matching the CSS
	// selector is visible in the rendered page.
	WaitVisible(selector string) error

	// Texts returns the rendered text of every element matching the CSS
	// selector, in document order.
	Texts(selector string) ([]string, error)

	// Close tears down the session and releases the underlying browser.
	// Safe to call after a failed operation.
	Close() error
}
