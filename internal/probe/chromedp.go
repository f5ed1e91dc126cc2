package probe

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ChromeBrowser is the production [Browser], driving headless Chrome via
// chromedp. Every session launches its own browser process with a fresh
// profile, so no cookies or page state leak between probes.
type ChromeBrowser struct {
	opts []chromedp.ExecAllocatorOption
}

// NewChromeBrowser creates a [ChromeBrowser] configured for unattended
// operation: headless, sandbox disabled, and /dev/shm usage disabled so the
// browser survives small shared-memory allocations in containers.
func NewChromeBrowser() *ChromeBrowser {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	return &ChromeBrowser{opts: opts}
}

// NewSession starts an isolated Chrome session bounded by ctx. Cancelling
// ctx (or reaching its deadline) aborts any in-flight session operation and
// kills the browser process.
func (b *ChromeBrowser) NewSession(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	return &chromeSession{
		ctx: taskCtx,
		cancel: func() {
			taskCancel()
			allocCancel()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *chromeSession) Navigate(url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(selector string) error {
	return chromedp.Run(s.ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Texts(selector string) ([]string, error) {
	var texts []string
	script := fmt.Sprintf(
		"Array.from(document.querySelectorAll(%q)).map(el => el.innerText)", selector)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, err
	}
	return texts, nil
}

// Close tears down the tab and the browser process. Idempotent.
func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
