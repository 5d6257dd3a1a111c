package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want models.Platform
	}{
		{"https://www.amazon.in/dp/B0CHX1W1XY", models.PlatformAmazon},
		{"https://www.AMAZON.com/Some-Product/dp/B0001", models.PlatformAmazon},
		{"https://www.amazon.co.uk/dp/B0001", models.PlatformAmazon},
		{"https://www.flipkart.com/apple-iphone-15-black-128-gb/p/itm6ac6485515ae4", models.PlatformFlipkart},
		{"https://www.myntra.com/tshirts/roadster/roadster-men-tshirt/123/buy", models.PlatformMyntra},
		{"https://shop.example.com/item/42", models.PlatformGeneric},
		{"", models.PlatformGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, platform.Classify(tt.url))
		})
	}
}

func TestTarget(t *testing.T) {
	t.Parallel()

	target, err := platform.Target("https://www.flipkart.com/x/p/itm1")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformFlipkart, target.Platform)
	assert.Equal(t, "www.flipkart.com", target.Host)

	_, err = platform.Target("mailto:someone@example.com")
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Amazon", platform.DisplayName(models.PlatformAmazon))
	assert.Equal(t, "Flipkart", platform.DisplayName(models.PlatformFlipkart))
	assert.Equal(t, "Myntra", platform.DisplayName(models.PlatformMyntra))
	assert.Equal(t, "Web", platform.DisplayName(models.PlatformGeneric))
}
