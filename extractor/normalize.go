package extractor

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches a numeric token with any mix of "," and "." separators.
var numberRe = regexp.MustCompile(`[0-9](?:[0-9.,]*[0-9])?`)

// CleanPrice parses a display price such as "₹39,999.00", "INR 1,24,499"
// or "€1.299,00". It returns false when the text carries no positive number.
func CleanPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	for _, tok := range numberRe.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(plainNumber(tok), 64)
		if err != nil || v <= 0 {
			continue
		}
		return v, true
	}
	return 0, false
}

// plainNumber rewrites tok with "." as the only decimal separator. When
// both separators appear the later one is the decimal mark. A lone comma
// followed by one or two digits is a decimal comma ("15,00"); otherwise
// commas group thousands in western or Indian style. Repeated dots group
// thousands ("1.299.000").
func plainNumber(tok string) string {
	lastComma := strings.LastIndexByte(tok, ',')
	lastDot := strings.LastIndexByte(tok, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(tok, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(tok, ",", "")
	case lastComma >= 0:
		if strings.Count(tok, ",") == 1 && len(tok)-lastComma-1 <= 2 {
			return strings.Replace(tok, ",", ".", 1)
		}
		return strings.ReplaceAll(tok, ",", "")
	case strings.Count(tok, ".") > 1:
		return strings.ReplaceAll(tok, ".", "")
	case lastDot >= 0 && len(tok)-lastDot-1 == 3 && tok[0] != '0':
		return strings.ReplaceAll(tok, ".", "")
	}
	return tok
}

var currencySymbols = []struct {
	marker   string
	currency string
}{
	{"₹", "INR"},
	{"rs.", "INR"},
	{"rs ", "INR"},
	{"inr", "INR"},
	{"€", "EUR"},
	{"eur", "EUR"},
	{"£", "GBP"},
	{"gbp", "GBP"},
	{"$", "USD"},
	{"usd", "USD"},
}

var euroTLDs = []string{".de", ".fr", ".it", ".es", ".nl", ".ie", ".at", ".be", ".fi", ".pt"}

// DefaultCurrency is used when neither the price text nor the host says
// otherwise.
const DefaultCurrency = "INR"

// DetectCurrency infers an ISO currency code. A symbol in priceText wins;
// otherwise the host's top-level domain decides.
func DetectCurrency(priceText, rawURL string) string {
	lower := strings.ToLower(priceText)
	for _, s := range currencySymbols {
		if strings.Contains(lower, s.marker) {
			return s.currency
		}
	}
	return currencyForHost(hostOf(rawURL))
}

func currencyForHost(host string) string {
	switch {
	case strings.HasSuffix(host, ".in"):
		return "INR"
	case strings.HasSuffix(host, ".uk"):
		return "GBP"
	case strings.HasSuffix(host, ".com"), strings.HasSuffix(host, ".us"):
		return "USD"
	}
	for _, tld := range euroTLDs {
		if strings.HasSuffix(host, tld) {
			return "EUR"
		}
	}
	return DefaultCurrency
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// categoryTaxonomy is checked in order; the first category with a matching
// keyword wins.
var categoryTaxonomy = []struct {
	name     string
	keywords []string
}{
	{"electronics", []string{"phone", "laptop", "tablet", "headphone", "earphone", "earbud", "speaker", "tv", "television", "camera", "watch", "smartwatch", "charger", "monitor", "keyboard", "mouse", "console", "gaming", "iphone", "samsung", "pixel", "macbook", "ipad", "airpod", "kindle"}},
	{"fashion", []string{"shirt", "jeans", "dress", "shoes", "sneaker", "jacket", "hoodie", "kurta", "saree", "lehenga", "t-shirt", "trouser", "skirt", "blazer", "sandal", "heel", "boot", "slipper"}},
	{"beauty", []string{"lipstick", "foundation", "cream", "serum", "shampoo", "conditioner", "perfume", "fragrance", "sunscreen", "moisturizer", "makeup", "mascara", "concealer"}},
	{"home", []string{"sofa", "table", "chair", "bed", "mattress", "pillow", "curtain", "lamp", "rug", "kitchen", "mixer", "blender", "appliance", "vacuum"}},
	{"sports", []string{"cricket", "football", "badminton", "yoga", "gym", "fitness", "running", "cycling", "dumbbell", "treadmill"}},
}

// DetectCategory maps title and a raw category (breadcrumb, schema value)
// onto the taxonomy. Unmatched input falls back to the lower-cased raw
// category.
func DetectCategory(title, rawCategory string) string {
	text := strings.ToLower(title + " " + rawCategory)
	words := wordSet(text)
	for _, c := range categoryTaxonomy {
		for _, kw := range c.keywords {
			if len(kw) < 4 {
				if _, ok := words[kw]; ok {
					return c.name
				}
				continue
			}
			if strings.Contains(text, kw) {
				return c.name
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(rawCategory))
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words(text) {
		set[w] = struct{}{}
	}
	return set
}

// words splits lower-cased text into runs of ASCII letters and digits.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

var brandNoise = regexp.MustCompile(`(?i)^visit the\s+|\s+store$|^brand:\s*`)

// CleanBrand strips storefront decoration such as "Visit the X Store".
func CleanBrand(raw string) string {
	b := collapseSpace(raw)
	for {
		next := strings.TrimSpace(brandNoise.ReplaceAllString(b, ""))
		if next == b {
			return b
		}
		b = next
	}
}

// ResolveImage makes src absolute against the page URL. Data URIs are dropped.
func ResolveImage(src, pageURL string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
