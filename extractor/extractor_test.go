package extractor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
)

func target(url string, p models.Platform) models.ExtractionTarget {
	return models.ExtractionTarget{URL: url, Platform: p}
}

const structuredPage = `<html><head>
<title>Buy Apple iPhone 15 online</title>
<script type="application/ld+json">{ this is not json </script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"BreadcrumbList","itemListElement":[]},
  {"@type":["Thing","Product"],
   "name":"Apple iPhone 15 (128 GB) - Black",
   "brand":{"@type":"Brand","name":"Apple"},
   "image":["https://img.example.com/iphone15.jpg","https://img.example.com/alt.jpg"],
   "offers":[{"@type":"Offer","price":"69900","priceCurrency":"inr","availability":"https://schema.org/InStock"}],
   "aggregateRating":{"@type":"AggregateRating","ratingValue":4.5,"reviewCount":120}}
]}
</script></head><body><h1>ignored</h1></body></html>`

func TestExtract_StructuredData(t *testing.T) {
	t.Parallel()

	got := extractor.Extract(structuredPage, target("https://shop.example.com/p/iphone-15", models.PlatformGeneric))

	assert.Equal(t, "Apple iPhone 15 (128 GB) - Black", got.Title)
	assert.InDelta(t, 69900, got.Price, 0.001)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "Apple", got.Brand)
	assert.Equal(t, "electronics", got.Category)
	assert.Equal(t, "https://img.example.com/iphone15.jpg", got.Image)
	assert.Equal(t, "4.5/5", got.Rating)
	assert.Equal(t, "InStock", got.AvailabilityText)
	assert.False(t, got.Unavailable)
}

func TestExtract_AggregateOfferLowPrice(t *testing.T) {
	t.Parallel()

	page := `<script type="application/ld+json">
{"@type":"Product","name":"Running Shoes","offers":{"@type":"AggregateOffer","lowPrice":2499,"priceCurrency":"USD",
 "availability":"http://schema.org/OutOfStock"}}</script>`

	got := extractor.Extract(page, target("https://shop.example.in/shoes", models.PlatformGeneric))

	assert.InDelta(t, 2499, got.Price, 0.001)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "fashion", got.Category)
	assert.True(t, got.Unavailable)
}

func TestExtract_StructuredDepthIsBounded(t *testing.T) {
	t.Parallel()

	product := `{"@type":"Product","name":"Deep Widget","offers":{"price":"10"}}`
	nested := strings.Repeat(`{"a":`, 30) + product + strings.Repeat(`}`, 30)
	page := `<title>Shallow Title</title><script type="application/ld+json">` + nested + `</script>`

	got := extractor.Extract(page, target("https://example.org/w", models.PlatformGeneric))

	assert.Equal(t, "Shallow Title", got.Title)
	assert.Zero(t, got.Price)
}

const amazonPage = `<html><head><title>Amazon.in</title></head><body>
<div id="wayfinding-breadcrumbs_container"><ul>
  <li><span class="a-list-item"><a>Electronics</a></span></li>
  <li><span class="a-list-item"><a> Headphones </a></span></li>
</ul></div>
<span id="productTitle">  boAt Rockerz 450 Bluetooth
   On Ear Headphones </span>
<a id="bylineInfo">Visit the boAt Store</a>
<div id="corePriceDisplay_desktop_feature_div"><span class="a-price"><span class="a-offscreen">₹1,299.00</span></span></div>
<img id="landingImage" src="/small.jpg" data-old-hires="https://m.media-amazon.com/large.jpg">
<div id="availability"><span> Currently unavailable. </span></div>
</body></html>`

func TestExtract_AmazonRules(t *testing.T) {
	t.Parallel()

	got := extractor.Extract(amazonPage, target("https://www.amazon.in/dp/B0XYZ", models.PlatformAmazon))

	assert.Equal(t, "boAt Rockerz 450 Bluetooth On Ear Headphones", got.Title)
	assert.InDelta(t, 1299, got.Price, 0.001)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "boAt", got.Brand)
	assert.Equal(t, "electronics", got.Category)
	assert.Equal(t, "https://m.media-amazon.com/large.jpg", got.Image)
	assert.Equal(t, "Currently unavailable.", got.AvailabilityText)
	assert.True(t, got.Unavailable)
}

func TestExtract_StructuredBeatsPlatformRules(t *testing.T) {
	t.Parallel()

	page := `<script type="application/ld+json">{"@type":"Product","name":"From Schema"}</script>
<span id="productTitle">From Selector</span><span class="a-offscreen">₹499</span>`

	got := extractor.Extract(page, target("https://www.amazon.in/dp/B1", models.PlatformAmazon))

	assert.Equal(t, "From Schema", got.Title)
	assert.InDelta(t, 499, got.Price, 0.001)
}

func TestExtract_FlipkartRules(t *testing.T) {
	t.Parallel()

	page := `<h1 class="yhB1nd"><span>SAMSUNG Galaxy S24 (Onyx Black, 256 GB)</span></h1>
<div class="Nx9bqj CxhGGd">₹74,999</div>
<img class="DByuf4" src="https://rukminim2.flixcart.com/s24.jpg">`

	got := extractor.Extract(page, target("https://www.flipkart.com/samsung-galaxy-s24/p/itm1", models.PlatformFlipkart))

	assert.Equal(t, "SAMSUNG Galaxy S24 (Onyx Black, 256 GB)", got.Title)
	assert.InDelta(t, 74999, got.Price, 0.001)
	assert.Equal(t, "https://rukminim2.flixcart.com/s24.jpg", got.Image)
	assert.Equal(t, "electronics", got.Category)
}

func TestExtract_MyntraDefaultsToFashion(t *testing.T) {
	t.Parallel()

	page := `<h1 class="pdp-title">Roadster</h1><h1 class="pdp-name">Men Slim Fit Casual</h1>
<span class="pdp-price"><strong>Rs. 1079</strong></span>`

	got := extractor.Extract(page, target("https://www.myntra.com/x/roadster/123/buy", models.PlatformMyntra))

	assert.Equal(t, "Men Slim Fit Casual", got.Title)
	assert.Equal(t, "Roadster", got.Brand)
	assert.InDelta(t, 1079, got.Price, 0.001)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "fashion", got.Category)
}

func TestExtract_GenericMetaAndRegexFallback(t *testing.T) {
	t.Parallel()

	page := `<html><head>
<meta property="og:title" content="Handmade Ceramic Lamp">
<meta property="og:image" content="/images/lamp.png">
</head><body><p>Today only $49.99, was $79.99</p></body></html>`

	got := extractor.Extract(page, target("https://crafts.example.com/lamp", models.PlatformGeneric))

	assert.Equal(t, "Handmade Ceramic Lamp", got.Title)
	assert.InDelta(t, 49.99, got.Price, 0.0001)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "https://crafts.example.com/images/lamp.png", got.Image)
	assert.Equal(t, "home", got.Category)
}

func TestExtract_MetaPriceUsesMetaCurrency(t *testing.T) {
	t.Parallel()

	page := `<meta property="og:title" content="Desk Chair">
<meta property="product:price:amount" content="129.00">
<meta property="product:price:currency" content="EUR">`

	got := extractor.Extract(page, target("https://example.com/chair", models.PlatformGeneric))

	assert.InDelta(t, 129, got.Price, 0.001)
	assert.Equal(t, "EUR", got.Currency)
}

func TestExtract_NoPriceIsZero(t *testing.T) {
	t.Parallel()

	got := extractor.Extract(`<title>Just a page</title><p>no numbers here</p>`, target("https://example.com/", models.PlatformGeneric))

	assert.Equal(t, "Just a page", got.Title)
	assert.Zero(t, got.Price)
	assert.False(t, got.HasPrice())
}

func TestPageText_StripsScripts(t *testing.T) {
	t.Parallel()

	text := extractor.PageText(`<html><body><script>var x = "$5";</script><p>Price:   ₹999</p></body></html>`)

	assert.Equal(t, "Price: ₹999", text)
}
