package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success is true whenever a payload was produced, even a degraded one.
	Success bool `json:"success"`

	// Data is the extracted product record.
	Data *FinalPayload `json:"data,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent on a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string          `json:"status"` // "healthy" or "degraded"
	Uptime    string          `json:"uptime"`
	Providers map[string]bool `json:"providers"`
	Cache     string          `json:"cache"`
	Version   string          `json:"version"`
}
