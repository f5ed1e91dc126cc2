// Package probe extracts the two availability signals from a tracked page.
//
// This package is internal to callwatch and owns the headless-browser side
// of the system. Each probe drives one isolated browser session: navigate to
// the link, wait (bounded) for the page's interactive controls to render,
// read their labels, and derive the signals from the label text.
//
// The main components are:
//
//   - [Browser] / [Session]: the browser-automation capability, as interfaces
//   - [ChromeBrowser]: the production implementation backed by chromedp
//   - [Prober]: runs one probe with timeout bounding and failure containment
//   - [Result]: two-variant outcome, signals on success or a failure cause
//
// A probe never lets an error escape as a panic or crash: timeouts,
// navigation failures, and extraction panics are all folded into the Result.
// The browser session is torn down on every exit path.
//
// Users of the callwatch library should not need to interact with this
// package directly, except to supply a custom [Browser] for testing.
package probe
