package mirror

import (
	"regexp"
	"strings"

	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
)

var (
	// titleHeaderRe matches the "Title: ..." header reader proxies emit.
	titleHeaderRe = regexp.MustCompile(`^Title:\s*(.+)$`)
	headingRe     = regexp.MustCompile(`^#{1,2}\s+(.+)$`)
	sectionRe     = regexp.MustCompile(`^#{1,6}\s+`)
	stockLabelRe  = regexp.MustCompile(`(?i)^(?:availability|stock|status)\s*:`)
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)`)
)

// Parse extracts fields from mirror text. The first "Title:" header or
// top-level heading is the title, the first Markdown image is the image,
// and the first currency-prefixed number is the price. Stock status is
// read only from the product section, which ends at the first heading
// after the product heading.
func Parse(text, pageURL string) models.ExtractedFields {
	var title, heading, image, priceText, availability string
	pastProduct := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if title == "" {
			if m := titleHeaderRe.FindStringSubmatch(line); m != nil {
				title = strings.TrimSpace(m[1])
				continue
			}
		}
		if heading != "" && sectionRe.MatchString(line) {
			pastProduct = true
		}
		if heading == "" {
			if m := headingRe.FindStringSubmatch(line); m != nil {
				heading = strings.TrimSpace(m[1])
			}
		}
		if image == "" {
			if m := imageRe.FindStringSubmatch(line); m != nil {
				image = m[1]
			}
		}
		if priceText == "" {
			if hints := extractor.PriceHints(line, 1); len(hints) > 0 {
				priceText = hints[0]
			}
		}
		if availability == "" && !pastProduct && isStockLine(line) {
			availability = line
		}
	}

	if extractor.IsJunkTitle(title) && heading != "" {
		title = heading
	}

	f := models.ExtractedFields{
		Title:            title,
		Currency:         extractor.DetectCurrency(priceText, pageURL),
		Category:         extractor.DetectCategory(title, ""),
		Image:            image,
		Unavailable:      availability != "",
		AvailabilityText: availability,
	}
	if price, ok := extractor.CleanPrice(priceText); ok {
		f.Price = price
	}
	return f
}

// isStockLine reports whether line is a stock status standing on its own,
// such as "Currently unavailable." or "Availability: Out of stock". Product
// tiles and links that merely mention "sold out" do not count.
func isStockLine(line string) bool {
	if strings.Contains(line, "](") {
		return false
	}
	plain := strings.TrimLeft(strings.NewReplacer("**", "", "__", "").Replace(line), " #*_>-|")
	if loc := stockLabelRe.FindStringIndex(plain); loc != nil {
		return extractor.IsUnavailableText(plain[loc[1]:])
	}
	bare := strings.ToLower(strings.TrimRight(plain, " *_|.!:"))
	for _, p := range extractor.UnavailablePhrases {
		if bare == p {
			return true
		}
	}
	return false
}
