package urlpattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
	"github.com/use-agent/pricelens/urlpattern"
)

func extract(t *testing.T, rawURL string) models.ExtractedFields {
	t.Helper()
	target, err := platform.Target(rawURL)
	require.NoError(t, err)
	return urlpattern.Extract(target)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		title    string
		brand    string
		category string
		currency string
	}{
		{
			name:     "flipkart slug before p",
			url:      "https://www.flipkart.com/apple-iphone-15-black-128-gb/p/itm6ac6485515ae4",
			title:    "Apple Iphone 15 Black 128 Gb",
			brand:    "Apple",
			category: "electronics",
			currency: "USD",
		},
		{
			name:     "amazon slug before dp",
			url:      "https://www.amazon.in/Samsung-Galaxy-Ultra-Titanium-Storage/dp/B0CS5XW6TN/ref=sr_1_1",
			title:    "Samsung Galaxy Ultra Titanium Storage",
			brand:    "Samsung",
			category: "electronics",
			currency: "INR",
		},
		{
			name:     "amazon gp product",
			url:      "https://www.amazon.in/boAt-Rockerz-450-Bluetooth-Headphones/gp/product/B07PR1CL3S",
			title:    "BoAt Rockerz 450 Bluetooth Headphones",
			brand:    "BoAt",
			category: "electronics",
			currency: "INR",
		},
		{
			name:     "amazon bare dp uses longest segment",
			url:      "https://www.amazon.in/dp/B0DPS62DYH",
			title:    "B0DPS62DYH",
			currency: "INR",
		},
		{
			name:     "myntra brand from first segment",
			url:      "https://www.myntra.com/roadster/roadster-men-slim-fit-casual-shirt/1234567/buy",
			title:    "Roadster Men Slim Fit Casual Shirt",
			brand:    "Roadster",
			category: "fashion",
			currency: "USD",
		},
		{
			name:     "generic longest segment drops extension",
			url:      "https://shop.example.co.uk/products/nike_air_zoom_running_shoes.html",
			title:    "Nike Air Zoom Running Shoes",
			brand:    "Nike",
			category: "fashion",
			currency: "GBP",
		},
		{
			name:     "no path",
			url:      "https://example.in/",
			title:    urlpattern.UnknownTitle,
			currency: "INR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extract(t, tt.url)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.brand, got.Brand)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.currency, got.Currency)
			assert.Zero(t, got.Price)
			assert.False(t, got.Unavailable)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	const u = "https://www.flipkart.com/apple-iphone-15-black-128-gb/p/itm123"
	first := extract(t, u)
	for range 5 {
		assert.Equal(t, first, extract(t, u))
	}
}
