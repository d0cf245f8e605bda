package resolver

import "clipcart/internal/config"

// DefaultStrategies assembles the standard cascade in its fixed priority
// order: DOM media tags, embedded script state, captured traffic, a raw markup
// sweep, and finally social platform search.
func DefaultStrategies(cfg *config.Config, translator Translator, searchers []PlatformSearcher) []Strategy {
	return []Strategy{
		MediaTagStrategy{},
		ScriptDataStrategy{
			Markers:  cfg.Resolver.ScriptMarkers,
			MaxDepth: cfg.Resolver.MaxDepth,
		},
		TrafficStrategy{},
		RawHTMLStrategy{},
		SocialSearchStrategy{
			Translator: translator,
			Searchers:  searchers,
			Suffixes:   cfg.Resolver.QuerySuffixes,
		},
	}
}
