package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Fetcher retrieves the fully rendered HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// BrowserFetcher renders pages through a headless-browser service
// (browserless-style /content endpoint). Serial sites are script-heavy, so
// plain HTTP GETs do not see the chapter lists.
type BrowserFetcher struct {
	endpoint   string
	waitMillis int
	client     *http.Client
}

// NewBrowserFetcher builds a fetcher against the given browser endpoint.
func NewBrowserFetcher(endpoint string, waitMillis int, timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{
		endpoint:   normalizeEndpoint(endpoint),
		waitMillis: waitMillis,
		client:     &http.Client{Timeout: timeout},
	}
}

// The browser service speaks HTTP even when configured with a ws:// URL.
func normalizeEndpoint(endpoint string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	trimmed = strings.Replace(trimmed, "ws://", "http://", 1)
	trimmed = strings.Replace(trimmed, "wss://", "https://", 1)
	return trimmed
}

// Fetch posts the target URL to the rendering endpoint and returns the page
// HTML. Transient transport failures are retried in place.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"url":            url,
		"waitForTimeout": f.waitMillis,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	var body []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint+"/content", bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := f.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("render returned status %d", resp.StatusCode)
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}
	return body, nil
}
