// Package platform classifies product URLs by storefront.
package platform

import (
	"strings"

	"github.com/use-agent/pricelens/models"
)

// markers are checked in order against the lower-cased URL.
var markers = []struct {
	substr   string
	platform models.Platform
}{
	{"amazon.in", models.PlatformAmazon},
	{"amazon.com", models.PlatformAmazon},
	{"amazon.", models.PlatformAmazon},
	{"amzn.", models.PlatformAmazon},
	{"flipkart.com", models.PlatformFlipkart},
	{"myntra.com", models.PlatformMyntra},
}

// Classify returns the platform tag for rawURL. It never fails; anything
// unrecognised is generic.
func Classify(rawURL string) models.Platform {
	lower := strings.ToLower(rawURL)
	for _, m := range markers {
		if strings.Contains(lower, m.substr) {
			return m.platform
		}
	}
	return models.PlatformGeneric
}

// Target validates rawURL and classifies it in one step.
func Target(rawURL string) (models.ExtractionTarget, error) {
	target, err := models.NewTarget(rawURL)
	if err != nil {
		return target, err
	}
	target.Platform = Classify(target.URL)
	return target, nil
}

// DisplayName is the human-facing storefront name.
func DisplayName(p models.Platform) string {
	switch p {
	case models.PlatformAmazon:
		return "Amazon"
	case models.PlatformFlipkart:
		return "Flipkart"
	case models.PlatformMyntra:
		return "Myntra"
	default:
		return "Web"
	}
}
