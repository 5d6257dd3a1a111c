package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/pricelens/config"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/webhook"
	"golang.org/x/sync/errgroup"
)

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				if value.(*models.BatchJob).CreatedAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// Batch runs batch jobs in the background.
type Batch struct {
	svc      *Service
	cfg      config.BatchConfig
	webhooks *webhook.Sender
}

// NewBatch creates a Batch. webhooks may be nil to disable delivery.
func NewBatch(svc *Service, cfg config.BatchConfig, webhooks *webhook.Sender) *Batch {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = 50
	}
	return &Batch{svc: svc, cfg: cfg, webhooks: webhooks}
}

// Post returns a handler for POST /api/v1/batch/extract.
func (b *Batch) Post() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if len(req.URLs) > b.cfg.MaxURLs {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("maximum %d URLs per batch", b.cfg.MaxURLs),
				},
			})
			return
		}

		job := &models.BatchJob{
			ID:        "batch-" + uuid.NewString(),
			Status:    "processing",
			Total:     len(req.URLs),
			Results:   make([]*models.ExtractResponse, len(req.URLs)),
			CreatedAt: time.Now().Unix(),
		}
		batchStore.Store(job.ID, job)

		go b.run(job, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: "processing",
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := batchStore.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "batch job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, val.(*models.BatchJob).Snapshot())
	}
}

// run extracts every URL of job with bounded concurrency, then delivers
// the batch.completed webhook.
func (b *Batch) run(job *models.BatchJob, req models.BatchRequest) {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	g.SetLimit(b.cfg.Concurrency)

	for i, rawURL := range req.URLs {
		g.Go(func() error {
			resp, _ := b.svc.ExtractOne(context.Background(), rawURL, 0)
			if !resp.Success {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			job.SetResult(i, resp)
			return nil
		})
	}
	_ = g.Wait()

	status := "completed"
	switch {
	case failed == job.Total:
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	job.Finish(status)

	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"failed", failed,
		"total", job.Total,
	)

	if req.WebhookURL != "" && b.webhooks != nil {
		b.webhooks.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      job.Snapshot(),
		}, nil)
	}
}
