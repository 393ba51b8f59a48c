package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const (
	userAgent   = "Mozilla/5.0 ScamScanBot/1.0"
	maxBodySize = 2 << 20
	// Below this many characters of text an SPA shell is treated as unrendered.
	spaMinText = 500
)

var (
	errNotHTML  = errors.New("non-HTML content")
	errSPAShell = errors.New("client-rendered page shell")

	htmlContentType = regexp.MustCompile(`(?i)text/html|application/xhtml\+xml`)
	spaRoot         = regexp.MustCompile(`(?i)<div[^>]+id=["'](?:root|app)["'][^>]*>`)
	bundlerMarks    = regexp.MustCompile(`(?i)chunk|webpack|vite|react|vue`)
)

type lightFetcher struct {
	client *http.Client
}

func newLightFetcher(timeout time.Duration) *lightFetcher {
	return &lightFetcher{client: &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}}
}

func (f *lightFetcher) fetch(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if !htmlContentType.MatchString(resp.Header.Get("Content-Type")) {
		return "", "", errNotHTML
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", "", err
	}

	html := string(body)
	text := ExtractText(html)
	if isSPAShell(html) && len(text) < spaMinText {
		return "", "", errSPAShell
	}
	return html, text, nil
}

// isSPAShell reports a root mount element together with bundler or
// framework fingerprints.
func isSPAShell(html string) bool {
	return spaRoot.MatchString(html) && bundlerMarks.MatchString(html)
}
