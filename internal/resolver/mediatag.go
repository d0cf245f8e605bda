package resolver

import (
	"context"
	"regexp"

	"clipcart/internal/store"
)

var mediaTagSrcPattern = regexp.MustCompile(`(?is)<(?:video|source)[^>]+src\s*=\s*["']([^"']+)["']`)

// MediaTagStrategy pulls URLs straight out of video and source elements. It
// prefers the DOM attributes captured by the browser and falls back to a scan
// of the raw markup, which catches tags the page renders without scripting.
type MediaTagStrategy struct{}

func (MediaTagStrategy) Name() string { return "media-tag" }

func (MediaTagStrategy) Resolve(_ context.Context, page *PageSnapshot, _ *store.Product) ([]string, error) {
	var candidates []string
	candidates = append(candidates, page.MediaTags...)
	for _, match := range mediaTagSrcPattern.FindAllStringSubmatch(page.HTML, -1) {
		candidates = append(candidates, match[1])
	}
	return candidates, nil
}
