// Package extractor turns product page markup into normalised fields.
//
// Extraction runs in three layers, each filling only what the previous left
// empty: embedded JSON-LD, platform selector rules, then generic metadata
// and a currency-prefixed price regex over the raw markup.
package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricelens/models"
)

// RawFields holds field values as found, before cleaning. Mirror and AI
// sources produce these too so every source shares one normalisation path.
type RawFields struct {
	Title        string
	PriceText    string
	Currency     string // explicit ISO code, wins over inference
	Brand        string
	Category     string
	Image        string
	Rating       string
	Availability string
}

// layer is one extraction layer's findings.
type layer struct {
	title, priceText, currency, brand, category, image, rating, availability string
}

func (l *layer) fill(next layer) {
	fillString(&l.title, next.title)
	fillString(&l.priceText, next.priceText)
	fillString(&l.currency, next.currency)
	fillString(&l.brand, next.brand)
	fillString(&l.category, next.category)
	fillString(&l.image, next.image)
	fillString(&l.rating, next.rating)
	fillString(&l.availability, next.availability)
}

func fillString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func (l layer) raw() RawFields {
	return RawFields{
		Title:        l.title,
		PriceText:    l.priceText,
		Currency:     l.currency,
		Brand:        l.brand,
		Category:     l.category,
		Image:        l.image,
		Rating:       l.rating,
		Availability: l.availability,
	}
}

// Extract parses rawHTML and returns the normalised fields for target.
// Unparseable markup yields empty fields.
func Extract(rawHTML string, target models.ExtractionTarget) models.ExtractedFields {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return models.ExtractedFields{}
	}
	return Normalize(ExtractRaw(doc, rawHTML, target.Platform), target.URL)
}

// ExtractRaw runs the three layers over an already parsed document.
func ExtractRaw(doc *goquery.Document, rawHTML string, p models.Platform) RawFields {
	l := structuredLayer(doc)
	l.fill(platformLayer(doc, p))
	l.fill(genericLayer(doc, rawHTML))
	return l.raw()
}

var isoCurrencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Normalize cleans raw values into the payload representation.
func Normalize(raw RawFields, pageURL string) models.ExtractedFields {
	title := collapseSpace(raw.Title)
	price, _ := CleanPrice(raw.PriceText)

	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if !isoCurrencyRe.MatchString(currency) {
		currency = DetectCurrency(raw.PriceText, pageURL)
	}

	availability := availabilityLabel(raw.Availability)

	return models.ExtractedFields{
		Title:            title,
		Price:            price,
		Currency:         currency,
		Brand:            CleanBrand(raw.Brand),
		Category:         DetectCategory(title, raw.Category),
		Image:            ResolveImage(raw.Image, pageURL),
		Rating:           raw.Rating,
		Unavailable:      IsUnavailableText(availability),
		AvailabilityText: availability,
	}
}

// availabilityLabel turns schema.org URLs like https://schema.org/InStock
// into their bare value and collapses whitespace otherwise.
func availabilityLabel(v string) string {
	v = collapseSpace(v)
	lower := strings.ToLower(v)
	if strings.Contains(lower, "schema.org/") {
		return v[strings.LastIndex(v, "/")+1:]
	}
	return v
}
