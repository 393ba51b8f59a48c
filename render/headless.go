package render

import (
	"context"
	"log"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Resource types failed before download; only documents and scripts matter
// for the rendered text.
var blockedResources = map[network.ResourceType]bool{
	network.ResourceTypeImage:      true,
	network.ResourceTypeStylesheet: true,
	network.ResourceTypeFont:       true,
	network.ResourceTypeMedia:      true,
}

// Chrome renders pages in a fresh headless Chrome process per call.
type Chrome struct {
	execPath string
	timeout  time.Duration
	settle   time.Duration
}

func NewChrome(execPath string, timeout, settle time.Duration) *Chrome {
	return &Chrome{execPath: execPath, timeout: timeout, settle: settle}
}

// Render implements Renderer.
func (c *Chrome) Render(ctx context.Context, url string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-zygote", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	defer browserCancel()

	chromedp.ListenTarget(browserCtx, func(ev any) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			exec := cdp.WithExecutor(browserCtx, chromedp.FromContext(browserCtx).Target)
			var err error
			if blockedResources[e.ResourceType] {
				err = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(exec)
			} else {
				err = fetch.ContinueRequest(e.RequestID).Do(exec)
			}
			if err != nil && browserCtx.Err() == nil {
				log.Printf("[Render] request interception for %s: %v", e.Request.URL, err)
			}
		}()
	})

	var html, text string
	err := chromedp.Run(browserCtx,
		fetch.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.settle),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}
