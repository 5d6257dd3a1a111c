// Package urlpattern derives product fields from the shape of a URL alone.
// It never touches the network and always yields a title.
package urlpattern

import (
	"net/url"
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
)

// UnknownTitle is used when the URL has no usable slug.
const UnknownTitle = "Unknown Product"

// KnownBrands are matched against the first word of a slug title.
var KnownBrands = []string{
	"apple", "samsung", "sony", "lg", "hp", "dell", "asus", "lenovo",
	"oneplus", "xiaomi", "redmi", "poco", "realme", "oppo", "vivo", "nokia",
	"motorola", "google", "pixel", "titan", "casio", "fossil", "nike",
	"adidas", "puma", "reebok", "levis", "zara", "boat", "jbl", "bose",
	"philips", "panasonic", "whirlpool", "bosch", "bajaj", "prestige",
	"havells", "crompton",
}

var slugSeparators = strings.NewReplacer("-", " ", "_", " ", "+", " ")

// Extract returns the fields implied by target's path. Price is always 0.
func Extract(target models.ExtractionTarget) models.ExtractedFields {
	segments := pathSegments(target.URL)

	var slug, brand string
	switch target.Platform {
	case models.PlatformAmazon:
		slug = segmentBefore(segments, "dp")
		if slug == "" {
			slug = segmentBeforePair(segments, "gp", "product")
		}
		if slug == "" {
			slug = longest(segments)
		}
	case models.PlatformFlipkart:
		slug = segmentBefore(segments, "p")
		if slug == "" && len(segments) > 0 {
			slug = segments[0]
		}
	case models.PlatformMyntra:
		switch {
		case len(segments) >= 2:
			brand = slugSeparators.Replace(segments[0])
			slug = segments[1]
		case len(segments) == 1:
			slug = segments[0]
		}
	default:
		slug = longest(segments)
	}

	title := titleFromSlug(slug)
	if brand == "" && title != "" {
		first, _, _ := strings.Cut(title, " ")
		if slices.Contains(KnownBrands, strings.ToLower(first)) {
			brand = first
		}
	}
	if title == "" {
		title = UnknownTitle
	}

	return models.ExtractedFields{
		Title:    title,
		Currency: extractor.DetectCurrency("", target.URL),
		Brand:    upperFirst(strings.TrimSpace(brand)),
		Category: extractor.DetectCategory(title, ""),
	}
}

// pathSegments returns the decoded, non-empty path segments of rawURL,
// skipping Amazon-style "ref=" tracking segments.
func pathSegments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var out []string
	for _, s := range strings.Split(u.Path, "/") {
		if s == "" || strings.HasPrefix(s, "ref=") {
			continue
		}
		out = append(out, s)
	}
	return out
}

func segmentBefore(segments []string, marker string) string {
	if i := slices.Index(segments, marker); i > 0 {
		return segments[i-1]
	}
	return ""
}

func segmentBeforePair(segments []string, first, second string) string {
	for i := 1; i+1 < len(segments); i++ {
		if segments[i] == first && segments[i+1] == second {
			return segments[i-1]
		}
	}
	return ""
}

// longest returns the longest segment; ties go to the earliest.
func longest(segments []string) string {
	var best string
	for _, s := range segments {
		if len(s) > len(best) {
			best = s
		}
	}
	return best
}

// titleFromSlug turns "apple-iphone-15-black-128-gb" into
// "Apple Iphone 15 Black 128 Gb". Only word-initial letters change case.
func titleFromSlug(slug string) string {
	if ext := path.Ext(slug); isPageExt(ext) {
		slug = strings.TrimSuffix(slug, ext)
	}
	words := strings.Fields(slugSeparators.Replace(slug))
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

func isPageExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".html", ".htm", ".php", ".aspx", ".jsp":
		return true
	}
	return false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
