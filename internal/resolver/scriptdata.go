package resolver

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"clipcart/internal/store"
)

// videoKeyPattern matches quoted JSON members whose key suggests a playable
// URL, used when a script blob cannot be parsed as JSON.
var videoKeyPattern = regexp.MustCompile(`"(?:video[_-]?url|play[_-]?url|stream[_-]?url|media[_-]?url|url)"\s*:\s*"((?:https?:|blob:)[^"]+)"`)

// ScriptDataStrategy mines inline scripts for embedded state objects. Pages
// commonly ship their player configuration as a JSON blob assigned near a
// well-known marker; the strategy extracts the balanced object after each
// marker, walks it for media URLs, and falls back to a key-pattern scan when
// the blob is not valid JSON.
type ScriptDataStrategy struct {
	Markers  []string
	MaxDepth int
}

func (ScriptDataStrategy) Name() string { return "script-data" }

func (s ScriptDataStrategy) Resolve(_ context.Context, page *PageSnapshot, _ *store.Product) ([]string, error) {
	maxDepth := s.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 32
	}

	var candidates []string
	for _, script := range page.Scripts {
		for _, marker := range s.Markers {
			idx := strings.Index(script, marker)
			if idx < 0 {
				continue
			}
			blob := extractBalancedObject(script[idx+len(marker):])
			if blob == "" {
				continue
			}
			var decoded any
			if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
				for _, match := range videoKeyPattern.FindAllStringSubmatch(blob, -1) {
					candidates = append(candidates, unescapeJSONURL(match[1]))
				}
				continue
			}
			candidates = append(candidates, walkForMediaURLs(decoded, maxDepth)...)
		}
	}
	return candidates, nil
}

// extractBalancedObject returns the first brace-balanced JSON object found in
// the input, honoring string literals and escapes. Returns "" when no complete
// object exists.
func extractBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// walkForMediaURLs traverses a decoded JSON value collecting strings that look
// like media URLs. Depth is capped so adversarial nesting cannot stall a pass.
func walkForMediaURLs(value any, depth int) []string {
	if depth <= 0 {
		return nil
	}
	switch v := value.(type) {
	case string:
		if looksLikeVideoURL(v) {
			return []string{v}
		}
	case map[string]any:
		var out []string
		for key, child := range v {
			if s, ok := child.(string); ok && isMediaKey(key) && strings.HasPrefix(strings.ToLower(s), "http") {
				out = append(out, s)
				continue
			}
			out = append(out, walkForMediaURLs(child, depth-1)...)
		}
		return out
	case []any:
		var out []string
		for _, child := range v {
			out = append(out, walkForMediaURLs(child, depth-1)...)
		}
		return out
	}
	return nil
}

func isMediaKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(key, "_", ""), "-", ""))
	switch normalized {
	case "videourl", "playurl", "streamurl", "mediaurl", "videosrc":
		return true
	}
	return false
}

// unescapeJSONURL undoes the slash escaping found inside raw script text so
// the URL is usable as-is. Both the JSON form and the unicode escape appear in
// the wild.
func unescapeJSONURL(raw string) string {
	replacer := strings.NewReplacer(`\/`, `/`, `/`, `/`, `/`, `/`)
	return replacer.Replace(raw)
}
