// Package render fetches a page's HTML and visible text. A plain HTTP GET is
// tried first; client-rendered shells and failed fetches fall through to a
// headless Chrome render, of which only one runs at a time per process.
package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"scamscan-engine/config"
	"scamscan-engine/metrics"
)

// Page sources
const (
	SourceLight    = "lightFetch"
	SourceHeadless = "headlessRender"
	SourceFailed   = "failed"
)

// ErrBusy is returned when the render slot stayed taken for the whole queue wait.
var ErrBusy = errors.New("server busy (render queue full), try again later")

// Page is the fetched content of one URL.
type Page struct {
	URL    string `json:"url"`
	HTML   string `json:"-"`
	Text   string `json:"-"`
	Source string `json:"source"`
}

// Renderer produces the rendered HTML and visible text of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (html, text string, err error)
}

// Pipeline runs the light fetch and, when needed, the headless render.
type Pipeline struct {
	light     *lightFetcher
	renderer  Renderer
	slot      *semaphore.Weighted
	queueWait time.Duration
}

// New builds a Pipeline from configuration. With SkipHeadless set the
// pipeline only does light fetches.
func New(cfg config.Config) *Pipeline {
	var r Renderer
	if cfg.SkipHeadless {
		log.Printf("[Render] headless rendering disabled (SKIP_CHROMEDP=true)")
	} else {
		r = NewChrome(cfg.ChromePath, cfg.RenderTimeout, cfg.RenderSettle)
	}
	return NewPipeline(cfg.LightFetchTimeout, r, cfg.RenderQueueWait)
}

// NewPipeline wires a pipeline with an explicit renderer, which may be nil.
func NewPipeline(lightTimeout time.Duration, r Renderer, queueWait time.Duration) *Pipeline {
	return &Pipeline{
		light:     newLightFetcher(lightTimeout),
		renderer:  r,
		slot:      semaphore.NewWeighted(1),
		queueWait: queueWait,
	}
}

// Fetch returns the page content. When both paths fail the returned Page
// has Source set to SourceFailed and err describes the last failure.
func (p *Pipeline) Fetch(ctx context.Context, url string) (Page, error) {
	html, text, err := p.light.fetch(ctx, url)
	if err == nil {
		metrics.RenderAttempts.WithLabelValues("light", "ok").Inc()
		return Page{URL: url, HTML: html, Text: text, Source: SourceLight}, nil
	}
	outcome := "error"
	if errors.Is(err, errSPAShell) {
		outcome = "spa"
	}
	metrics.RenderAttempts.WithLabelValues("light", outcome).Inc()
	log.Printf("[Render] light fetch of %s abandoned: %v", url, err)

	if p.renderer == nil {
		return Page{URL: url, Source: SourceFailed}, fmt.Errorf("light fetch: %w", err)
	}

	html, text, err = p.render(ctx, url)
	if err != nil {
		metrics.RenderAttempts.WithLabelValues("headless", "error").Inc()
		log.Printf("[Render] headless render of %s failed: %v", url, err)
		return Page{URL: url, Source: SourceFailed}, fmt.Errorf("headless render: %w", err)
	}
	metrics.RenderAttempts.WithLabelValues("headless", "ok").Inc()
	if text == "" {
		text = ExtractText(html)
	}
	return Page{URL: url, HTML: html, Text: text, Source: SourceHeadless}, nil
}

// render holds the process-wide render slot for the duration of one render.
func (p *Pipeline) render(ctx context.Context, url string) (string, string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, p.queueWait)
	defer cancel()

	start := time.Now()
	if err := p.slot.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		metrics.RenderRejected.Inc()
		return "", "", ErrBusy
	}
	defer p.slot.Release(1)
	metrics.RenderQueueWait.Observe(time.Since(start).Seconds())

	html, text, err := p.renderer.Render(ctx, url)
	if err != nil {
		return "", "", err
	}
	if html == "" {
		return "", "", errors.New("empty render")
	}
	return html, text, nil
}
