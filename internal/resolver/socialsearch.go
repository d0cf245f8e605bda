package resolver

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"clipcart/internal/store"
)

// Translator renders a product title into another language for search.
type Translator interface {
	Translate(ctx context.Context, text string, target language.Tag) (string, error)
}

// PlatformSearcher queries one social video platform for clips.
type PlatformSearcher interface {
	Platform() string
	Search(ctx context.Context, query string) ([]string, error)
}

// SocialSearchStrategy is the fallback when the product page itself yields
// nothing: search social platforms for demonstration clips of the product.
// Queries are built from the title in its original language plus translations,
// each optionally combined with configured suffixes, and searchers run in
// their configured priority order. The first platform returning results wins.
type SocialSearchStrategy struct {
	Translator Translator
	Searchers  []PlatformSearcher
	Suffixes   []string
}

func (SocialSearchStrategy) Name() string { return "social-search" }

func (s SocialSearchStrategy) Resolve(ctx context.Context, _ *PageSnapshot, product *store.Product) ([]string, error) {
	queries := s.buildQueries(ctx, product.Title)
	if len(queries) == 0 {
		return nil, nil
	}
	for _, searcher := range s.Searchers {
		for _, query := range queries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results, err := searcher.Search(ctx, query)
			if err != nil {
				// A down platform must not block the remaining ones.
				continue
			}
			if len(results) > 0 {
				return results, nil
			}
		}
	}
	return nil, nil
}

func (s SocialSearchStrategy) buildQueries(ctx context.Context, title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	variants := []string{title}
	if s.Translator != nil {
		for _, target := range []language.Tag{language.Chinese, language.English} {
			translated, err := s.Translator.Translate(ctx, title, target)
			if err != nil || strings.TrimSpace(translated) == "" {
				continue
			}
			variants = append(variants, strings.TrimSpace(translated))
		}
	}

	seen := make(map[string]struct{})
	var queries []string
	add := func(query string) {
		if _, ok := seen[query]; ok {
			return
		}
		seen[query] = struct{}{}
		queries = append(queries, query)
	}
	for _, variant := range variants {
		add(variant)
		for _, suffix := range s.Suffixes {
			suffix = strings.TrimSpace(suffix)
			if suffix == "" {
				continue
			}
			add(variant + " " + suffix)
		}
	}
	return queries
}
