package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"clipcart/internal/services"
)

// maxPageBytes caps how much of a product page is read. Listing pages are a
// few hundred kilobytes; anything past this is not markup worth scanning.
const maxPageBytes = 4 << 20

var scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)

// HTTPFetcher captures product page snapshots with a plain GET. It sees only
// server-rendered markup and inline scripts, which covers the media-tag,
// script-data, and raw-markup extractors; request capture and timing hints
// stay empty because nothing executes the page.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher builds a fetcher with the given browser identity and
// per-request timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*PageSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "download", "fetch page",
			"build request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "download", "fetch page",
			"request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "download", "fetch page",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "download", "fetch page",
			"read body", err)
	}

	html := string(body)
	return &PageSnapshot{
		URL:     resp.Request.URL.String(),
		HTML:    html,
		Scripts: inlineScripts(html),
	}, nil
}

// inlineScripts returns the non-empty script bodies found in the markup, in
// document order.
func inlineScripts(html string) []string {
	var scripts []string
	for _, match := range scriptBlockPattern.FindAllStringSubmatch(html, -1) {
		body := strings.TrimSpace(match[1])
		if body == "" {
			continue
		}
		scripts = append(scripts, body)
	}
	return scripts
}
