package textutil

import "strings"

// fallbackTitle is used when sanitization leaves nothing usable.
const fallbackTitle = "product"

var titleReplacer = strings.NewReplacer(
	"\\", "_",
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeTitle replaces filesystem-unsafe characters in a product title with
// underscores and trims surrounding whitespace. Empty results fall back to
// "product" so a filename can always be derived.
func SanitizeTitle(title string) string {
	sanitized := strings.TrimSpace(titleReplacer.Replace(title))
	if sanitized == "" {
		return fallbackTitle
	}
	return sanitized
}

// FileStem converts a product title into a filename stem: sanitized, with
// interior spaces collapsed to single underscores.
func FileStem(title string) string {
	sanitized := SanitizeTitle(title)
	fields := strings.Fields(sanitized)
	if len(fields) == 0 {
		return fallbackTitle
	}
	return strings.Join(fields, "_")
}
