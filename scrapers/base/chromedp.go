package base

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// ChromeBrowser drives one headless Chrome tab for the whole run
type ChromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	settle      time.Duration
	timeout     time.Duration
	currentURL  string
}

// NewChromeBrowser launches headless Chrome and opens a tab
func NewChromeBrowser(opts Options) (*ChromeBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx)

	headers := map[string]interface{}{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "ja,en-US;q=0.7,en;q=0.3",
		"Connection":      "keep-alive",
	}
	if err := chromedp.Run(taskCtx, network.Enable(), network.SetExtraHTTPHeaders(network.Headers(headers))); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp header error: %w", err)
	}

	return &ChromeBrowser{
		ctx:         taskCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		settle:      opts.SettleDelay,
		timeout:     opts.NavigationTimeout,
	}, nil
}

// runCtx bounds a single chromedp action by the navigation timeout and the caller's ctx.
// Cancelling a child of the tab context aborts the action without closing the tab.
func (b *ChromeBrowser) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(b.ctx, b.timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (b *ChromeBrowser) Load(ctx context.Context, url string) error {
	runCtx, cancel := b.runCtx(ctx)
	defer cancel()

	var location string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.Location(&location),
	)
	if err != nil {
		return fmt.Errorf("chromedp navigation error: %w", err)
	}
	b.currentURL = location
	return nil
}

func (b *ChromeBrowser) Images(ctx context.Context) ([]models.CandidateImage, error) {
	runCtx, cancel := b.runCtx(ctx)
	defer cancel()

	var raw string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(imagesScript, &raw)); err != nil {
		return nil, fmt.Errorf("chromedp image query error: %w", err)
	}
	return decodeImages(raw, b.currentURL)
}

func (b *ChromeBrowser) Links(ctx context.Context, selector string) ([]string, error) {
	runCtx, cancel := b.runCtx(ctx)
	defer cancel()

	var raw string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(linksScript(selector), &raw)); err != nil {
		return nil, fmt.Errorf("chromedp link query error: %w", err)
	}
	return decodeLinks(raw)
}

func (b *ChromeBrowser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}
