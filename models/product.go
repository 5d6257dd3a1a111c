package models

import (
	"net/url"
	"strings"
)

// Platform tags the storefront a URL belongs to.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMyntra   Platform = "myntra"
	PlatformGeneric  Platform = "generic"
)

// Extraction method prefixes recorded on the final payload.
const (
	MethodHTMLPrefix = "html:"
	MethodMirror     = "mirror"
	MethodAIPrefix   = "ai:"
	MethodURLPattern = "url-pattern"
)

// ExtractionTarget is the URL being analysed. It is immutable once built.
type ExtractionTarget struct {
	URL      string
	Host     string
	Platform Platform
}

// NewTarget validates rawURL and returns a target with Host filled in.
// Platform is left for the classifier.
func NewTarget(rawURL string) (ExtractionTarget, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ExtractionTarget{}, NewScrapeError(ErrCodeInvalidInput, "url is required", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ExtractionTarget{}, NewScrapeError(ErrCodeInvalidInput, "url is malformed", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ExtractionTarget{}, NewScrapeError(ErrCodeInvalidInput, "url must use http or https", nil)
	}
	if u.Hostname() == "" {
		return ExtractionTarget{}, NewScrapeError(ErrCodeInvalidInput, "url has no host", nil)
	}
	return ExtractionTarget{
		URL:  trimmed,
		Host: strings.ToLower(u.Hostname()),
	}, nil
}

// ExtractedFields is what one source (a page, the mirror, a provider)
// yielded. Price 0 means no price was found.
type ExtractedFields struct {
	Title            string  `json:"title"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	Brand            string  `json:"brand"`
	Category         string  `json:"category"`
	Image            string  `json:"image"`
	Rating           string  `json:"rating,omitempty"`
	Unavailable      bool    `json:"unavailable"`
	AvailabilityText string  `json:"availabilityText,omitempty"`
}

// HasPrice reports whether a positive price was found.
func (f ExtractedFields) HasPrice() bool { return f.Price > 0 }

// FinalPayload is the single result handed back for a target.
type FinalPayload struct {
	ExtractedFields

	Platform         string   `json:"platform"`
	URL              string   `json:"url"`
	ExtractionMethod string   `json:"extractionMethod"`
	ExtractionNote   string   `json:"extractionNote"`
	AIErrors         []string `json:"aiErrors"`
	URLExtracted     bool     `json:"urlExtracted"`
	AIExtracted      bool     `json:"aiExtracted"`
}
