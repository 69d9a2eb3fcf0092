package source

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"uzrates/internal/normalize"
)

// BrowserConfig describes a headless-browser adapter for pages whose
// rates are rendered client-side. Strictly more expensive than the HTTP
// engines; each instance carries its own hard timeout.
type BrowserConfig struct {
	BankID      string
	URL         string
	WaitVisible string // selector that signals the widget has hydrated
	// Script is evaluated in-page and must return an array of
	// {currency, buy, sell, central} objects (all strings).
	Script   string
	ExecPath string // chromium binary; empty means chromedp's default lookup
	Timeout  time.Duration

	Norm normalize.Rules
}

type Browser struct {
	cfg BrowserConfig
}

func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Browser{cfg: cfg}
}

func (b *Browser) Bank() string           { return b.cfg.BankID }
func (b *Browser) Rules() normalize.Rules { return b.cfg.Norm }

// Timeout overrides the pipeline's default per-adapter deadline.
func (b *Browser) Timeout() time.Duration { return b.cfg.Timeout }

func (b *Browser) Fetch(ctx context.Context) ([]Raw, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var rows []Raw
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(b.cfg.URL),
		chromedp.WaitVisible(b.cfg.WaitVisible, chromedp.ByQuery),
		chromedp.Evaluate(b.cfg.Script, &rows),
	)
	if err != nil {
		// cancelBrowser above tears the process down even on timeout
		return nil, fmt.Errorf("browser %s: %w", b.cfg.BankID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, b.cfg.BankID)
	}
	return rows, nil
}
