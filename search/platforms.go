package search

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
)

const maxTitleLen = 100

// storefront knows how to build one platform's search URL and read its
// result tiles. A nil parse means the platform is answered with a link to
// its own search page.
type storefront struct {
	key       string
	platform  models.Platform
	base      string
	searchURL func(query string) string
	parse     func(doc *goquery.Document, base string, limit int) []models.SearchResult
}

var storefronts = []storefront{
	{
		key:      "amazon",
		platform: models.PlatformAmazon,
		base:     "https://www.amazon.in",
		searchURL: func(q string) string {
			return "https://www.amazon.in/s?k=" + url.QueryEscape(q)
		},
		parse: parseAmazon,
	},
	{
		key:      "flipkart",
		platform: models.PlatformFlipkart,
		base:     "https://www.flipkart.com",
		searchURL: func(q string) string {
			return "https://www.flipkart.com/search?q=" + url.QueryEscape(q)
		},
		parse: parseFlipkart,
	},
	{
		// Myntra rejects automated search traffic outright.
		key:      "myntra",
		platform: models.PlatformMyntra,
		base:     "https://www.myntra.com",
		searchURL: func(q string) string {
			return "https://www.myntra.com/" + url.PathEscape(strings.ToLower(strings.Join(strings.Fields(q), "-")))
		},
	},
}

func parseAmazon(doc *goquery.Document, base string, limit int) []models.SearchResult {
	var out []models.SearchResult
	doc.Find(`[data-component-type="s-search-result"]`).EachWithBreak(func(_ int, tile *goquery.Selection) bool {
		title := collapse(tile.Find("h2 span").First().Text())
		if title == "" {
			title = collapse(tile.Find("h2").AttrOr("aria-label", ""))
		}
		price, ok := extractor.CleanPrice(tile.Find(".a-price .a-offscreen").First().Text())
		if title == "" || !ok {
			return true
		}

		href := tile.Find("h2 a").AttrOr("href", "")
		if href == "" {
			href = tile.Find(`a[href*="/dp/"]`).AttrOr("href", "")
		}
		out = append(out, models.SearchResult{
			Title:    truncate(title, maxTitleLen),
			Price:    price,
			Currency: "INR",
			Image:    tile.Find("img.s-image").AttrOr("src", ""),
			URL:      absolute(href, base),
			Rating:   collapse(tile.Find(".a-icon-alt").First().Text()),
			Platform: platform.DisplayName(models.PlatformAmazon),
		})
		return len(out) < limit
	})
	return out
}

// parseFlipkart walks product links, since Flipkart's class names are
// generated. Several links point at the same tile, so results are keyed by
// product path.
func parseFlipkart(doc *goquery.Document, base string, limit int) []models.SearchResult {
	var out []models.SearchResult
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/p/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := link.AttrOr("href", "")
		key := href
		if i := strings.IndexByte(key, '?'); i >= 0 {
			key = key[:i]
		}
		if _, dup := seen[key]; dup {
			return true
		}

		tile := link.Closest("[data-id]")
		if tile.Length() == 0 {
			tile = link.Parent().Parent()
		}

		title := firstNonEmpty(
			tile.Find("a[title]").AttrOr("title", ""),
			link.AttrOr("title", ""),
			collapse(tile.Find(`a[class*="Title"], div[class*="title"]`).First().Text()),
			tile.Find("img[alt]").AttrOr("alt", ""),
		)
		price, ok := tilePrice(tile)
		if len(title) <= 3 || !ok {
			return true
		}

		seen[key] = struct{}{}
		out = append(out, models.SearchResult{
			Title:    truncate(title, maxTitleLen),
			Price:    price,
			Currency: "INR",
			Image:    tile.Find("img").First().AttrOr("src", ""),
			URL:      absolute(href, base),
			Platform: platform.DisplayName(models.PlatformFlipkart),
		})
		return len(out) < limit
	})
	return out
}

// tilePrice prefers an element whose class names a price, then the first
// rupee amount in the tile text.
func tilePrice(tile *goquery.Selection) (float64, bool) {
	if v, ok := extractor.CleanPrice(tile.Find(`div[class*="price"], div[class*="Price"]`).First().Text()); ok {
		return v, true
	}
	if hints := extractor.PriceHints(tile.Text(), 1); len(hints) > 0 {
		return extractor.CleanPrice(hints[0])
	}
	return 0, false
}

func searchLink(sf storefront, query string) models.SearchResult {
	return models.SearchResult{
		Title:        `Search "` + query + `" on ` + platform.DisplayName(sf.platform),
		Currency:     "INR",
		URL:          sf.searchURL(query),
		Platform:     platform.DisplayName(sf.platform),
		IsSearchLink: true,
	}
}

// absolute resolves a tile link against the storefront origin.
func absolute(href, base string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = collapse(v); v != "" {
			return v
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
