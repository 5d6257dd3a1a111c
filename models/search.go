package models

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	// Query is the product name to look up on every storefront. Required,
	// at least two characters once trimmed.
	Query string `json:"query" binding:"required"`
}

// SearchResult is one product tile from a storefront's search page.
type SearchResult struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Image    string  `json:"image"`
	URL      string  `json:"url"`
	Rating   string  `json:"rating"`
	Platform string  `json:"platform"`

	// IsSearchLink marks a placeholder pointing at the storefront's own
	// search page for platforms whose results are not scraped.
	IsSearchLink bool `json:"isSearchLink,omitempty"`
}

// SearchResults groups results by platform key ("amazon", "flipkart",
// "myntra"). Every key is present, with an empty list when a platform
// failed.
type SearchResults struct {
	Query   string                    `json:"query"`
	Results map[string][]SearchResult `json:"results"`

	// BestDeal is the cheapest priced result across platforms, nil when
	// nothing carried a price.
	BestDeal *SearchResult `json:"bestDeal"`

	// TotalResults counts priced results, excluding search links.
	TotalResults int `json:"totalResults"`
}

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	Success bool `json:"success"`
	*SearchResults
	Timing TimingInfo   `json:"timing"`
	Error  *ErrorDetail `json:"error,omitempty"`
}
