package resolver

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// CapturedResponse is one network response observed while a product page
// rendered.
type CapturedResponse struct {
	URL         string
	ContentType string
}

// PageSnapshot is everything the cascade needs from a rendered product page.
// Snapshots are produced by a browser collaborator so strategies stay free of
// browser plumbing and easy to exercise in tests.
type PageSnapshot struct {
	URL       string
	HTML      string
	Scripts   []string
	MediaTags []string
	Responses []CapturedResponse
	Timings   []string
}

// PageFetcher renders a product page and captures its snapshot.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*PageSnapshot, error)
}

var videoContentTypes = []string{
	"video/mp4",
	"application/x-mpegurl",
	"application/vnd.apple.mpegurl",
	"video/quicktime",
}

var videoExtensions = []string{".mp4", ".m3u8", ".ts", ".flv"}

var cdnHostFragments = []string{
	"cdn",
	"video",
	"stream",
	"media",
}

// looksLikeVideoURL reports whether the URL's path carries a known media
// extension. Query strings and fragments are ignored.
func looksLikeVideoURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	for _, known := range videoExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// isVideoContentType reports whether a response content type denotes playable
// media. Parameters such as charset are tolerated.
func isVideoContentType(contentType string) bool {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	for _, known := range videoContentTypes {
		if normalized == known {
			return true
		}
	}
	return false
}

// containsMediaHint reports whether a media extension appears anywhere in the
// URL, including query parameters. Signed delivery URLs often carry the
// extension outside the path.
func containsMediaHint(raw string) bool {
	lower := strings.ToLower(raw)
	for _, ext := range videoExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// hasCDNHost reports whether the URL host contains a fragment typical of
// media delivery hosts.
func hasCDNHost(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, fragment := range cdnHostFragments {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}
