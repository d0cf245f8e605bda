package resolver_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/text/language"

	"clipcart/internal/resolver"
	"clipcart/internal/store"
)

type stubStrategy struct {
	name    string
	results []string
	err     error
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(context.Context, *resolver.PageSnapshot, *store.Product) ([]string, error) {
	s.calls++
	return s.results, s.err
}

func TestResolveShortCircuitsOnFirstHit(t *testing.T) {
	empty := &stubStrategy{name: "first"}
	hit := &stubStrategy{name: "second", results: []string{"https://cdn.example/a.mp4"}}
	unreached := &stubStrategy{name: "third", results: []string{"https://cdn.example/b.mp4"}}

	r := resolver.New(nil, empty, hit, unreached)
	product := &store.Product{ID: "p1", Title: "Lamp"}
	candidates, err := r.Resolve(context.Background(), &resolver.PageSnapshot{}, product)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 1 || candidates[0] != "https://cdn.example/a.mp4" {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	if empty.calls != 1 || hit.calls != 1 {
		t.Fatal("expected first two strategies to run once each")
	}
	if unreached.calls != 0 {
		t.Fatal("expected cascade to stop after first hit")
	}
}

func TestResolveSwallowsStrategyErrors(t *testing.T) {
	broken := &stubStrategy{name: "broken", err: errors.New("extractor crashed")}
	hit := &stubStrategy{name: "working", results: []string{"https://cdn.example/a.mp4"}}

	r := resolver.New(nil, broken, hit)
	candidates, err := r.Resolve(context.Background(), &resolver.PageSnapshot{}, &store.Product{ID: "p1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected fallthrough past broken strategy, got %v", candidates)
	}
}

func TestResolveNormalizesCandidates(t *testing.T) {
	noisy := &stubStrategy{name: "noisy", results: []string{
		"  https://cdn.example/a.mp4  ",
		"blob:https://page.example/33cf4e05",
		"https://cdn.example/a.mp4",
		"ftp://cdn.example/b.mp4",
		"https://cdn.example/b.mp4",
	}}

	r := resolver.New(nil, noisy)
	candidates, err := r.Resolve(context.Background(), &resolver.PageSnapshot{}, &store.Product{ID: "p1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"https://cdn.example/a.mp4", "https://cdn.example/b.mp4"}
	if len(candidates) != len(want) {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	for i, url := range want {
		if candidates[i] != url {
			t.Fatalf("candidate %d: got %q want %q", i, candidates[i], url)
		}
	}
}

func TestResolveReturnsEmptyWhenAllStrategiesMiss(t *testing.T) {
	r := resolver.New(nil, &stubStrategy{name: "a"}, &stubStrategy{name: "b"})
	candidates, err := r.Resolve(context.Background(), &resolver.PageSnapshot{}, &store.Product{ID: "p1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected no candidates, got %v", candidates)
	}
}

func TestMediaTagStrategyScansAttributesAndMarkup(t *testing.T) {
	page := &resolver.PageSnapshot{
		MediaTags: []string{"https://cdn.example/from-dom.mp4"},
		HTML:      `<div><video controls src="https://cdn.example/from-markup.mp4"></video></div>`,
	}
	candidates, err := resolver.MediaTagStrategy{}.Resolve(context.Background(), page, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	if candidates[0] != "https://cdn.example/from-dom.mp4" {
		t.Fatalf("expected DOM attribute first, got %q", candidates[0])
	}
}

func TestScriptDataStrategyExtractsMarkedState(t *testing.T) {
	script := `window.__INITIAL_DATA__ = {"page":{"player":{"videoUrl":"https://cdn.example/item.mp4","poster":"https://cdn.example/item.jpg"}}};`
	strategy := resolver.ScriptDataStrategy{
		Markers:  []string{"__INITIAL_DATA__"},
		MaxDepth: 32,
	}
	candidates, err := strategy.Resolve(context.Background(), &resolver.PageSnapshot{Scripts: []string{script}}, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 1 || candidates[0] != "https://cdn.example/item.mp4" {
		t.Fatalf("unexpected candidates %v", candidates)
	}
}

func TestScriptDataStrategyFallsBackToKeyPattern(t *testing.T) {
	script := `var g_config = {"play_url":"https:\/\/cdn.example\/escaped.mp4", "video_url":"https://cdn.example/keyed.mp4", broken: [}`
	strategy := resolver.ScriptDataStrategy{
		Markers:  []string{"g_config"},
		MaxDepth: 32,
	}
	candidates, err := strategy.Resolve(context.Background(), &resolver.PageSnapshot{Scripts: []string{script}}, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]bool{
		"https://cdn.example/escaped.mp4": false,
		"https://cdn.example/keyed.mp4":   false,
	}
	for _, candidate := range candidates {
		if _, ok := want[candidate]; ok {
			want[candidate] = true
		}
	}
	for url, found := range want {
		if !found {
			t.Fatalf("expected unescaped %q among %v", url, candidates)
		}
	}
}

func TestScriptDataStrategyIgnoresUnmarkedScripts(t *testing.T) {
	strategy := resolver.ScriptDataStrategy{Markers: []string{"_runData_"}}
	candidates, err := strategy.Resolve(context.Background(), &resolver.PageSnapshot{
		Scripts: []string{`var other = {"videoUrl":"https://cdn.example/skip.mp4"};`},
	}, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates from unmarked script, got %v", candidates)
	}
}

func TestTrafficStrategyFiltersCapturedActivity(t *testing.T) {
	page := &resolver.PageSnapshot{
		Responses: []resolver.CapturedResponse{
			{URL: "https://page.example/api/detail", ContentType: "application/json"},
			{URL: "https://video-cdn.example/stream", ContentType: "video/mp4"},
			{URL: "https://page.example/assets/clip.m3u8", ContentType: "text/plain"},
		},
		Timings: []string{
			"https://page.example/style.css",
			"https://cdn.example/segments/0001.ts",
		},
	}
	candidates, err := resolver.TrafficStrategy{}.Resolve(context.Background(), page, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{
		"https://video-cdn.example/stream",
		"https://page.example/assets/clip.m3u8",
		"https://cdn.example/segments/0001.ts",
	}
	if len(candidates) != len(want) {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	for i, url := range want {
		if candidates[i] != url {
			t.Fatalf("candidate %d: got %q want %q", i, candidates[i], url)
		}
	}
}

func TestRawHTMLStrategyMatchesMediaShapedURLs(t *testing.T) {
	html := `<a href="https://cdn.example/demo.mp4?sig=abc">clip</a> <img src="https://cdn.example/pic.jpg">`
	candidates, err := resolver.RawHTMLStrategy{}.Resolve(context.Background(), &resolver.PageSnapshot{HTML: html}, &store.Product{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 1 || candidates[0] != "https://cdn.example/demo.mp4?sig=abc" {
		t.Fatalf("unexpected candidates %v", candidates)
	}
}

type stubTranslator struct {
	byTag map[language.Tag]string
}

func (s stubTranslator) Translate(_ context.Context, _ string, target language.Tag) (string, error) {
	if text, ok := s.byTag[target]; ok {
		return text, nil
	}
	return "", errors.New("unsupported language")
}

type stubSearcher struct {
	platform string
	results  map[string][]string
	queries  []string
}

func (s *stubSearcher) Platform() string { return s.platform }

func (s *stubSearcher) Search(_ context.Context, query string) ([]string, error) {
	s.queries = append(s.queries, query)
	return s.results[query], nil
}

func TestSocialSearchBuildsVariantsAndHonorsPriority(t *testing.T) {
	first := &stubSearcher{platform: "douyin", results: map[string][]string{}}
	second := &stubSearcher{
		platform: "youtube",
		results: map[string][]string{
			"desk lamp review": {"https://yt.example/v/found.mp4"},
		},
	}
	strategy := resolver.SocialSearchStrategy{
		Translator: stubTranslator{byTag: map[language.Tag]string{
			language.English: "desk lamp",
		}},
		Searchers: []resolver.PlatformSearcher{first, second},
		Suffixes:  []string{"review"},
	}

	candidates, err := strategy.Resolve(context.Background(), nil, &store.Product{Title: "스탠드 조명"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(candidates) != 1 || candidates[0] != "https://yt.example/v/found.mp4" {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	if len(first.queries) == 0 {
		t.Fatal("expected first-priority platform to be queried first")
	}
	sawOriginal := false
	for _, query := range first.queries {
		if query == "스탠드 조명" {
			sawOriginal = true
		}
	}
	if !sawOriginal {
		t.Fatalf("expected original-language query among %v", first.queries)
	}
}
