package extractor

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Bounds for walking embedded JSON-LD.
const (
	maxStructuredDepth = 12
	maxStructuredNodes = 5000
)

// productVisitor walks decoded JSON looking for the first Product-typed
// object. It gives up after maxStructuredNodes values.
type productVisitor struct {
	visited int
}

func (v *productVisitor) find(node any, depth int) map[string]any {
	if depth > maxStructuredDepth || v.visited >= maxStructuredNodes {
		return nil
	}
	v.visited++

	switch n := node.(type) {
	case map[string]any:
		if isProductType(n["@type"]) {
			return n
		}
		// @graph first, it is where most sites put their entities.
		if g, ok := n["@graph"]; ok {
			if found := v.find(g, depth+1); found != nil {
				return found
			}
		}
		for _, k := range slices.Sorted(maps.Keys(n)) {
			if k == "@graph" {
				continue
			}
			if found := v.find(n[k], depth+1); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range n {
			if found := v.find(child, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		name := v
		if i := strings.LastIndexAny(name, "/:"); i >= 0 {
			name = name[i+1:]
		}
		return name == "Product" || name == "ProductGroup"
	case []any:
		for _, item := range v {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// structuredLayer reads every ld+json block on the page. Blocks that fail to
// decode are skipped on their own.
func structuredLayer(doc *goquery.Document) layer {
	var product map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			slog.Debug("extractor: skipping malformed ld+json block", "index", i, "error", err)
			return true
		}
		v := &productVisitor{}
		product = v.find(decoded, 0)
		return product == nil
	})
	if product == nil {
		return layer{}
	}
	return productToLayer(product)
}

func productToLayer(p map[string]any) layer {
	l := layer{
		title:    stringOf(p["name"]),
		brand:    nameOf(p["brand"]),
		image:    imageOf(p["image"]),
		category: stringOf(p["category"]),
	}
	if offer := firstPricedOffer(p["offers"], 0); offer != nil {
		l.priceText = scalarOf(offer["price"])
		if l.priceText == "" {
			l.priceText = scalarOf(offer["lowPrice"])
		}
		l.currency = strings.ToUpper(stringOf(offer["priceCurrency"]))
		l.availability = stringOf(offer["availability"])
	}
	if l.availability == "" {
		l.availability = offerAvailability(p["offers"])
	}
	if l.availability == "" {
		l.availability = stringOf(p["availability"])
	}
	if r, ok := p["aggregateRating"].(map[string]any); ok {
		if v := scalarOf(r["ratingValue"]); v != "" {
			l.rating = v + "/5"
		}
	}
	return l
}

// firstPricedOffer returns the first offer carrying a price or lowPrice.
// AggregateOffer objects may nest their own offers list.
func firstPricedOffer(node any, depth int) map[string]any {
	if depth > 3 {
		return nil
	}
	switch n := node.(type) {
	case map[string]any:
		if scalarOf(n["price"]) != "" || scalarOf(n["lowPrice"]) != "" {
			return n
		}
		return firstPricedOffer(n["offers"], depth+1)
	case []any:
		for _, item := range n {
			if o := firstPricedOffer(item, depth+1); o != nil {
				return o
			}
		}
	}
	return nil
}

// offerAvailability reads availability from the first offer, priced or
// not. Sold-out listings often drop the price entirely.
func offerAvailability(node any) string {
	switch n := node.(type) {
	case map[string]any:
		return stringOf(n["availability"])
	case []any:
		if len(n) > 0 {
			return offerAvailability(n[0])
		}
	}
	return ""
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return collapseSpace(s)
	}
	return ""
}

// scalarOf renders a string or number value as text.
func scalarOf(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case json.Number:
		return n.String()
	}
	return ""
}

func nameOf(v any) string {
	switch n := v.(type) {
	case string:
		return collapseSpace(n)
	case map[string]any:
		return stringOf(n["name"])
	case []any:
		for _, item := range n {
			if s := nameOf(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func imageOf(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case map[string]any:
		if u := stringOf(n["url"]); u != "" {
			return u
		}
		return stringOf(n["contentUrl"])
	case []any:
		for _, item := range n {
			if s := imageOf(item); s != "" {
				return s
			}
		}
	}
	return ""
}
