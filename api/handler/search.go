package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricelens/models"
)

// Searcher compares a product across storefronts. *search.Searcher
// implements it.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResults, error)
}

// Search returns a handler for POST /api/v1/search.
func Search(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		results, err := s.Search(c.Request.Context(), req.Query)
		if err != nil {
			scrapeErr, ok := err.(*models.ScrapeError)
			if !ok {
				scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(mapErrorToStatus(scrapeErr), models.SearchResponse{
				Success: false,
				Error:   scrapeErr.ToDetail(),
				Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
			})
			return
		}

		c.JSON(http.StatusOK, models.SearchResponse{
			Success:       true,
			SearchResults: results,
			Timing:        models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
		})
	}
}
