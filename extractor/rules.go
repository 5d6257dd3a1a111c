package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/pricelens/models"
)

// fieldRule locates one field. With no attrs the element text is used,
// otherwise the first non-empty attribute in order.
type fieldRule struct {
	sel   cascadia.Selector
	attrs []string
}

// platformRules lists, per field, the rules to try in priority order.
type platformRules struct {
	title        []fieldRule
	price        []fieldRule
	brand        []fieldRule
	image        []fieldRule
	breadcrumb   []fieldRule // last match wins
	availability []fieldRule

	defaultCategory string
}

func text(selectors ...string) []fieldRule {
	rules := make([]fieldRule, 0, len(selectors))
	for _, s := range selectors {
		rules = append(rules, fieldRule{sel: cascadia.MustCompile(s)})
	}
	return rules
}

func attr(attrs []string, selectors ...string) []fieldRule {
	rules := text(selectors...)
	for i := range rules {
		rules[i].attrs = attrs
	}
	return rules
}

var imageAttrs = []string{"data-old-hires", "data-src", "src"}

var platformTable = map[models.Platform]platformRules{
	models.PlatformAmazon: {
		title: text("#productTitle", "#title span", "h1#title"),
		price: text(
			"#corePriceDisplay_desktop_feature_div .a-price .a-offscreen",
			"#corePrice_feature_div .a-price .a-offscreen",
			"span.a-price-whole",
			"span.a-offscreen",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
		),
		brand:        text("#bylineInfo", "tr.po-brand td.a-span9 span"),
		image:        attr(imageAttrs, "#landingImage", "#imgBlkFront", "#main-image"),
		breadcrumb:   text("#wayfinding-breadcrumbs_container li span.a-list-item a"),
		availability: text("#availability span", "#availability", "#outOfStock"),
	},
	models.PlatformFlipkart: {
		title:        text("span.VU-ZEz", "span.B_NuCI", "h1.yhB1nd span", "h1._9E25nV"),
		price:        text("div.Nx9bqj.CxhGGd", "div._30jeq3._16Jk6d", "div.Nx9bqj", "div._30jeq3"),
		brand:        text("span.mEh187", "span.G6XhRU"),
		image:        attr(imageAttrs, "img._396cs4", "img.DByuf4"),
		breadcrumb:   text("div.r2CdBx a", "div._1MR4o5 a"),
		availability: text("div.Z8JjpR", "div._16FRp0"),
	},
	models.PlatformMyntra: {
		title:           text("h1.pdp-name", "h1.pdp-title"),
		price:           text("span.pdp-price strong", "span.pdp-price"),
		brand:           text("h1.pdp-title"),
		image:           attr(imageAttrs, "img.image-grid-imageV2"),
		breadcrumb:      text("ul.breadcrumbs-list li a"),
		availability:    text("div.size-buttons-out-of-stock", "div.pdp-out-of-stock"),
		defaultCategory: "fashion",
	},
}

// platformLayer applies the rule table for p. Generic pages get nothing.
func platformLayer(doc *goquery.Document, p models.Platform) layer {
	r, ok := platformTable[p]
	if !ok {
		return layer{}
	}
	l := layer{
		title:        firstMatch(doc, r.title),
		priceText:    firstMatch(doc, r.price),
		brand:        firstMatch(doc, r.brand),
		image:        firstMatch(doc, r.image),
		category:     lastMatch(doc, r.breadcrumb),
		availability: firstMatch(doc, r.availability),
	}
	if l.category == "" {
		l.category = r.defaultCategory
	}
	return l
}

func firstMatch(doc *goquery.Document, rules []fieldRule) string {
	for _, rule := range rules {
		var found string
		doc.FindMatcher(rule.sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = valueOf(s, rule.attrs)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func lastMatch(doc *goquery.Document, rules []fieldRule) string {
	for _, rule := range rules {
		var found string
		doc.FindMatcher(rule.sel).Each(func(_ int, s *goquery.Selection) {
			if v := valueOf(s, rule.attrs); v != "" {
				found = v
			}
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func valueOf(s *goquery.Selection, attrs []string) string {
	if len(attrs) == 0 {
		return collapseSpace(s.Text())
	}
	for _, a := range attrs {
		if v, ok := s.Attr(a); ok && v != "" {
			return v
		}
	}
	return ""
}
