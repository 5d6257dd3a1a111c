package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// currencyPriceRe finds a currency-marked number anywhere in raw content.
var currencyPriceRe = regexp.MustCompile(`(?:₹|Rs\.?|INR|\$|€|£)\s?([0-9](?:[0-9.,]*[0-9])?)`)

// metaSource reads one attribute from the first element matching sel.
type metaSource struct {
	sel  string
	attr string // "" reads text
}

var (
	genericTitle = []metaSource{
		{`meta[property="og:title"]`, "content"},
		{`meta[name="twitter:title"]`, "content"},
		{"title", ""},
		{"h1", ""},
	}
	genericImage = []metaSource{
		{`meta[property="og:image"]`, "content"},
		{`meta[property="og:image:secure_url"]`, "content"},
		{`meta[name="twitter:image"]`, "content"},
		{`link[rel="image_src"]`, "href"},
	}
	genericPrice = []metaSource{
		{`meta[property="product:price:amount"]`, "content"},
		{`meta[property="og:price:amount"]`, "content"},
		{`[itemprop="price"]`, "content"},
		{`[itemprop="price"]`, ""},
	}
	genericCurrency = []metaSource{
		{`meta[property="product:price:currency"]`, "content"},
		{`meta[property="og:price:currency"]`, "content"},
		{`[itemprop="priceCurrency"]`, "content"},
	}
	genericAvailability = []metaSource{
		{`meta[property="product:availability"]`, "content"},
		{`meta[property="og:availability"]`, "content"},
		{`[itemprop="availability"]`, "href"},
		{`[itemprop="availability"]`, "content"},
	}
	genericBrand = []metaSource{
		{`meta[property="product:brand"]`, "content"},
		{`meta[property="og:brand"]`, "content"},
		{`[itemprop="brand"]`, "content"},
	}
)

// genericLayer reads shared metadata tags and, when no price surfaced,
// scans the raw markup for a currency-prefixed number.
func genericLayer(doc *goquery.Document, rawHTML string) layer {
	l := layer{
		title:        firstMeta(doc, genericTitle),
		image:        firstMeta(doc, genericImage),
		priceText:    firstMeta(doc, genericPrice),
		currency:     firstMeta(doc, genericCurrency),
		availability: firstMeta(doc, genericAvailability),
		brand:        firstMeta(doc, genericBrand),
	}
	if l.priceText == "" {
		if m := currencyPriceRe.FindString(rawHTML); m != "" {
			l.priceText = m
		}
	}
	return l
}

func firstMeta(doc *goquery.Document, sources []metaSource) string {
	for _, src := range sources {
		s := doc.Find(src.sel).First()
		if s.Length() == 0 {
			continue
		}
		var v string
		if src.attr == "" {
			v = s.Text()
		} else {
			v, _ = s.Attr(src.attr)
		}
		if v = collapseSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// PriceHints returns up to max distinct currency-prefixed price strings in
// the order they appear in text.
func PriceHints(text string, max int) []string {
	seen := make(map[string]struct{})
	var hints []string
	for _, m := range currencyPriceRe.FindAllString(text, -1) {
		m = collapseSpace(m)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		hints = append(hints, m)
		if len(hints) >= max {
			break
		}
	}
	return hints
}

// PageText returns the visible body text of rawHTML with scripts and styles
// removed.
func PageText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()
	return collapseSpace(doc.Find("body").Text())
}
