package resolver

import (
	"context"

	"clipcart/internal/store"
)

// TrafficStrategy inspects network activity captured while the page rendered.
// A response qualifies when its content type denotes media, or when its URL
// carries a media extension, or when it comes from a delivery host and has a
// media extension in its resource timing entry. Order of observation is kept
// so the player's first request, usually the main rendition, ranks first.
type TrafficStrategy struct{}

func (TrafficStrategy) Name() string { return "traffic" }

func (TrafficStrategy) Resolve(_ context.Context, page *PageSnapshot, _ *store.Product) ([]string, error) {
	var candidates []string
	for _, response := range page.Responses {
		switch {
		case isVideoContentType(response.ContentType):
			candidates = append(candidates, response.URL)
		case looksLikeVideoURL(response.URL):
			candidates = append(candidates, response.URL)
		case hasCDNHost(response.URL) && containsMediaHint(response.URL):
			candidates = append(candidates, response.URL)
		}
	}
	for _, timing := range page.Timings {
		if looksLikeVideoURL(timing) {
			candidates = append(candidates, timing)
		}
	}
	return candidates, nil
}
