package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipcart/internal/store"
)

// Presentation carries everything the encoder needs to dress a clip for its
// channel: the caption text, hashtags, the closing call to action, and where
// subtitles are burned in.
type Presentation struct {
	Title         string
	Description   string
	Hashtags      []string
	CallToAction  string
	SubtitleStyle string
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

// BuildPresentation derives the channel-facing presentation for a product.
// The hashtag template may reference {title}, which is replaced with the
// product title compacted for tagging.
func BuildPresentation(channel *store.Channel, product *store.Product) Presentation {
	title := strings.TrimSpace(product.Title)
	if prefix := strings.TrimSpace(channel.TitlePrefix); prefix != "" {
		title = prefix + " " + title
	}

	presentation := Presentation{
		Title:         titleCaser.String(title),
		Description:   buildDescription(title, product.AffiliateURL),
		Hashtags:      buildHashtags(channel.HashtagTemplate, product),
		CallToAction:  callToAction(channel.Tone),
		SubtitleStyle: normalizeSubtitleStyle(channel.SubtitleStyle),
	}
	return presentation
}

// buildDescription joins the display title with the purchase link, when one
// has been attached to the product.
func buildDescription(title, affiliateURL string) string {
	description := titleCaser.String(title)
	if url := strings.TrimSpace(affiliateURL); url != "" {
		description += "\n\n" + url
	}
	return description
}

func buildHashtags(template string, product *store.Product) []string {
	compact := strings.ReplaceAll(strings.TrimSpace(product.Title), " ", "")
	expanded := strings.ReplaceAll(template, "{title}", compact)

	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, tag := range strings.Fields(expanded) {
		add(tag)
	}
	for _, tag := range product.Tags {
		add(tag)
	}
	return tags
}

// callToAction picks the closing line matching the channel's voice.
func callToAction(tone string) string {
	switch strings.ToUpper(strings.TrimSpace(tone)) {
	case "FORMAL":
		return "Product details are available through the link below."
	case "SALES":
		return "Grab yours now! Link below."
	default:
		return "Check the link in the description!"
	}
}

func normalizeSubtitleStyle(style string) string {
	switch strings.ToUpper(strings.TrimSpace(style)) {
	case "TOP":
		return "TOP"
	case "BOTTOM":
		return "BOTTOM"
	default:
		return "BOTH"
	}
}
