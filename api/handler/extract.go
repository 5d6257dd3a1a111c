package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricelens/cache"
	"github.com/use-agent/pricelens/models"
)

// Extractor produces one payload per URL. *pipeline.Pipeline implements it.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*models.FinalPayload, error)
}

// Service runs single extractions for the extract and batch endpoints.
type Service struct {
	extractor Extractor
	cache     cache.Store
	timeout   time.Duration
}

// NewService wires an Extractor with an optional payload cache. timeout
// bounds each extraction; zero means no deadline beyond the caller's.
func NewService(ex Extractor, cc cache.Store, timeout time.Duration) *Service {
	return &Service{extractor: ex, cache: cc, timeout: timeout}
}

// ExtractOne runs a single extraction and returns the response with the
// HTTP status it should be served with. maxAge in milliseconds enables the
// cache lookup.
func (s *Service) ExtractOne(ctx context.Context, rawURL string, maxAgeMs int) (*models.ExtractResponse, int) {
	totalStart := time.Now()
	maxAge := time.Duration(maxAgeMs) * time.Millisecond

	// ── 1. Validate ────────────────────────────────────────────────
	target, err := models.NewTarget(rawURL)
	if err != nil {
		return errorResponse(err, totalStart)
	}

	// ── 2. Cache lookup ────────────────────────────────────────────
	key := cache.Key(target.URL)
	if s.cache != nil && maxAge > 0 {
		if cached, hit := s.cache.Get(ctx, key, maxAge); hit {
			return &models.ExtractResponse{
				Success:     true,
				Data:        cached,
				CacheStatus: "hit",
				Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
			}, http.StatusOK
		}
	}

	// ── 3. Pipeline ────────────────────────────────────────────────
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	payload, err := s.extractor.Extract(ctx, target.URL)
	if err != nil {
		return errorResponse(err, totalStart)
	}

	resp := &models.ExtractResponse{
		Success: true,
		Data:    payload,
		Timing:  models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
	}

	// ── 4. Cache store ─────────────────────────────────────────────
	if s.cache != nil && maxAge > 0 {
		if cache.Cacheable(payload) {
			s.cache.Set(context.WithoutCancel(ctx), key, payload)
		}
		resp.CacheStatus = "miss"
	}
	return resp, http.StatusOK
}

// Extract returns a handler for POST /api/v1/extract.
func Extract(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		resp, status := svc.ExtractOne(c.Request.Context(), req.URL, req.MaxAge)
		c.JSON(status, resp)
	}
}

func errorResponse(err error, start time.Time) (*models.ExtractResponse, int) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	return &models.ExtractResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
	}, mapErrorToStatus(scrapeErr)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
