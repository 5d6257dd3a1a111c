package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt fixes the answer schema and forbids invented prices.
const SystemPrompt = `You extract product details for an e-commerce URL.

Return ONLY one JSON object, no markdown fences or explanation, with exactly these keys:
{"title": string, "price": number or null, "currency": string, "brand": string, "category": string, "image": string, "platform": string}

Rules:
- Use the URL, the hints and the page excerpt as your only evidence.
- Set "price" to null unless one of the observed price strings or the excerpt shows the current selling price. Never guess or recall a price.
- "currency" is an ISO 4217 code such as INR or USD.
- Use "" for any other field you cannot determine.`

// Hints carry what earlier stages already learned about the page.
type Hints struct {
	Title        string
	Brand        string
	Category     string
	Availability string
	// Prices are literal price-like strings seen in the page.
	Prices []string
	// Excerpt is a short readable rendering of the page.
	Excerpt string
}

// BuildPrompt renders the user message for one target.
func BuildPrompt(targetURL string, h Hints) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", targetURL)

	hint := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&b, "%s hint: %s\n", label, v)
		}
	}
	hint("Title", h.Title)
	hint("Brand", h.Brand)
	hint("Category", h.Category)
	hint("Availability", h.Availability)

	if len(h.Prices) > 0 {
		fmt.Fprintf(&b, "Observed price strings: %s\n", strings.Join(h.Prices, " | "))
	} else {
		b.WriteString("Observed price strings: none (return null for price)\n")
	}

	if ex := strings.TrimSpace(h.Excerpt); ex != "" {
		fmt.Fprintf(&b, "\nPage excerpt:\n%s\n", ex)
	}
	return b.String()
}
