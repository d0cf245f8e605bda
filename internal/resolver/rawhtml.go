package resolver

import (
	"context"
	"regexp"

	"clipcart/internal/store"
)

var rawMediaURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+?\.(?:mp4|m3u8|ts|flv)(?:\?[^\s"'<>\\]*)?`)

// RawHTMLStrategy is the blunt last resort before leaving the page: a regex
// sweep of the markup for anything shaped like a media URL. It runs after the
// structured strategies so their higher-precision results win.
type RawHTMLStrategy struct{}

func (RawHTMLStrategy) Name() string { return "raw-html" }

func (RawHTMLStrategy) Resolve(_ context.Context, page *PageSnapshot, _ *store.Product) ([]string, error) {
	return rawMediaURLPattern.FindAllString(page.HTML, -1), nil
}
