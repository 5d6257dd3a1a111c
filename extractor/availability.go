package extractor

import "strings"

// UnavailablePhrases mark a product as out of stock when found in
// availability text or page copy.
var UnavailablePhrases = []string{
	"currently unavailable",
	"out of stock",
	"sold out",
	"no longer available",
	"temporarily unavailable",
	"not available for purchase",
	"we don't know when or if this item will be back in stock",
	"outofstock",
	"soldout",
	"discontinued",
}

// JunkTitlePhrases identify titles that belong to error or challenge pages
// rather than products.
var JunkTitlePhrases = []string{
	"page not found",
	"404",
	"access denied",
	"robot check",
	"captcha",
	"are you a human",
	"verify you are human",
	"blocked",
	"forbidden",
	"something went wrong",
	"sorry",
	"error",
	"attention required",
	"just a moment",
}

// IsUnavailableText reports whether text carries an out-of-stock phrase.
// Schema.org availability URLs such as "https://schema.org/OutOfStock" match
// too.
func IsUnavailableText(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range UnavailablePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsJunkTitle reports whether title is empty or looks like an error page.
// Phrases match on word boundaries, so "Terror" or "X404" do not count.
func IsJunkTitle(title string) bool {
	if strings.TrimSpace(title) == "" {
		return true
	}
	t := " " + strings.Join(words(strings.ToLower(title)), " ") + " "
	for _, p := range JunkTitlePhrases {
		if strings.Contains(t, " "+p+" ") {
			return true
		}
	}
	return false
}
