package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pricelens/api"
	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/cache"
	"github.com/use-agent/pricelens/config"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/mock"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/webhook"
)

const testKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{testKey}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		Batch:     config.BatchConfig{Concurrency: 2, MaxURLs: 3},
	}
}

func kettle(rawURL string) *models.FinalPayload {
	return &models.FinalPayload{
		ExtractedFields: models.ExtractedFields{
			Title:    "Prestige Electric Kettle",
			Price:    1299,
			Currency: "INR",
			Category: "home",
		},
		Platform:         "Flipkart",
		URL:              rawURL,
		ExtractionMethod: "html:desktop",
		AIErrors:         []string{},
	}
}

// counting returns an extractor that answers kettle payloads.
func counting(calls *atomic.Int32) *mock.Extractor {
	return &mock.Extractor{ExtractFn: func(_ context.Context, rawURL string) (*models.FinalPayload, error) {
		calls.Add(1)
		return kettle(rawURL), nil
	}}
}

func newServer(t *testing.T, cfg *config.Config, ex handler.Extractor, cc cache.Store, providers ...llm.Provider) *httptest.Server {
	t.Helper()
	backend := ""
	if cc != nil {
		backend = cc.Backend()
	}
	r := api.NewRouter(cfg, api.Deps{
		Service:      handler.NewService(ex, cc, 5*time.Second),
		Providers:    providers,
		CacheBackend: backend,
		Webhooks:     webhook.NewSender().WithRetryDelays(0),
		StartTime:    time.Now(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

var authed = map[string]string{"X-API-Key": testKey}

func TestHealth_NoAuth(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil,
		&mock.Provider{NameValue: "openai", Unset: true},
		&mock.Provider{NameValue: "gemini"},
	)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, map[string]bool{"openai": false, "gemini": true}, health.Providers)
	assert.Equal(t, "disabled", health.Cache)
	assert.Equal(t, handler.Version, health.Version)
}

func TestHealth_DegradedWithoutProviders(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cc := cache.NewMemory(10, time.Hour)
	t.Cleanup(cc.Close)
	srv := newServer(t, testConfig(), counting(&calls), cc)

	_, body := do(t, http.MethodGet, srv.URL+"/api/v1/health", "", nil)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "memory", health.Cache)
}

func TestExtract_Auth(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)
	body := `{"url":"https://www.flipkart.com/kettle/p/itm1"}`

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(data), models.ErrCodeUnauthorized)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, map[string]string{"Authorization": "Bearer " + testKey})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract",
		`{"url":" https://www.flipkart.com/kettle/p/itm1 "}`, authed)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ExtractResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Success)
	require.NotNil(t, out.Data)
	assert.Equal(t, "Prestige Electric Kettle", out.Data.Title)
	assert.Equal(t, "https://www.flipkart.com/kettle/p/itm1", out.Data.URL)
	assert.Empty(t, out.CacheStatus)
	assert.Nil(t, out.Error)
}

func TestExtract_InvalidInput(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)

	for _, body := range []string{
		`{"url":"ftp://example.com/item"}`,
		`{"url":"not a url"}`,
		`{}`,
		`{"url":`,
	} {
		resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, string(data), models.ErrCodeInvalidInput, body)
	}
	assert.Zero(t, calls.Load())
}

func TestExtract_InternalError(t *testing.T) {
	t.Parallel()

	ex := &mock.Extractor{ExtractFn: func(context.Context, string) (*models.FinalPayload, error) {
		return nil, errors.New("boom")
	}}
	srv := newServer(t, testConfig(), ex, nil)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract", `{"url":"https://shop.example/p/1"}`, authed)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(data), models.ErrCodeInternal)
}

func TestExtract_AppliesDeadline(t *testing.T) {
	t.Parallel()

	deadlines := make(chan bool, 1)
	ex := &mock.Extractor{ExtractFn: func(ctx context.Context, rawURL string) (*models.FinalPayload, error) {
		_, ok := ctx.Deadline()
		deadlines <- ok
		return kettle(rawURL), nil
	}}
	srv := newServer(t, testConfig(), ex, nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/extract", `{"url":"https://shop.example/p/1"}`, authed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, <-deadlines)
}

func TestExtract_Cache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cc := cache.NewMemory(10, time.Hour)
	t.Cleanup(cc.Close)
	srv := newServer(t, testConfig(), counting(&calls), cc)

	body := `{"url":"https://www.flipkart.com/kettle/p/itm1","max_age":60000}`

	var first, second models.ExtractResponse
	_, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
	require.NoError(t, json.Unmarshal(data, &first))
	_, data = do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
	require.NoError(t, json.Unmarshal(data, &second))

	assert.Equal(t, "miss", first.CacheStatus)
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, first.Data.Title, second.Data.Title)
	assert.Equal(t, int32(1), calls.Load())

	// Without max_age the cache is bypassed.
	_, data = do(t, http.MethodPost, srv.URL+"/api/v1/extract", `{"url":"https://www.flipkart.com/kettle/p/itm1"}`, authed)
	var third models.ExtractResponse
	require.NoError(t, json.Unmarshal(data, &third))
	assert.Empty(t, third.CacheStatus)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExtract_DegradedResultsNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ex := &mock.Extractor{ExtractFn: func(_ context.Context, rawURL string) (*models.FinalPayload, error) {
		calls.Add(1)
		return &models.FinalPayload{
			ExtractedFields:  models.ExtractedFields{Title: "Kettle", Currency: "INR"},
			URL:              rawURL,
			ExtractionMethod: models.MethodURLPattern,
			URLExtracted:     true,
		}, nil
	}}
	cc := cache.NewMemory(10, time.Hour)
	t.Cleanup(cc.Close)
	srv := newServer(t, testConfig(), ex, cc)

	body := `{"url":"https://shop.example/p/kettle","max_age":60000}`
	do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
	do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)

	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, cc.Len())
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}

	var calls atomic.Int32
	srv := newServer(t, cfg, counting(&calls), nil)
	body := `{"url":"https://shop.example/p/1"}`

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/extract", body, authed)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(data), models.ErrCodeRateLimited)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.Enabled = false

	var calls atomic.Int32
	srv := newServer(t, cfg, counting(&calls), nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/extract", `{"url":"https://shop.example/p/1"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cc := cache.NewMemory(10, time.Hour)
	t.Cleanup(cc.Close)
	srv := newServer(t, testConfig(), counting(&calls), cc)

	do(t, http.MethodPost, srv.URL+"/api/v1/extract", `{"url":"https://shop.example/p/metrics","max_age":1000}`, authed)

	resp, data := do(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "pricelens_cache_lookups_total")
}

func TestBatch(t *testing.T) {
	t.Parallel()

	type delivery struct {
		body      []byte
		signature string
	}
	hooks := make(chan delivery, 1)
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		hooks <- delivery{body: body, signature: r.Header.Get(webhook.SignatureHeader)}
	}))
	t.Cleanup(hookSrv.Close)

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)

	reqBody := `{"urls":["https://shop.example/p/1","ftp://bad","https://shop.example/p/2"],` +
		`"webhook_url":"` + hookSrv.URL + `","webhook_secret":"s3cret"}`
	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/batch/extract", reqBody, authed)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted models.BatchResponse
	require.NoError(t, json.Unmarshal(data, &accepted))
	assert.Equal(t, 3, accepted.Total)
	assert.True(t, strings.HasPrefix(accepted.ID, "batch-"))

	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		_, data := do(t, http.MethodGet, srv.URL+"/api/v1/batch/"+accepted.ID, "", authed)
		status = models.BatchStatusResponse{}
		return json.Unmarshal(data, &status) == nil && status.Status != "processing"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "partial", status.Status)
	assert.Equal(t, 3, status.Completed)
	require.Len(t, status.Results, 3)
	assert.True(t, status.Results[0].Success)
	assert.False(t, status.Results[1].Success)
	assert.Equal(t, models.ErrCodeInvalidInput, status.Results[1].Error.Code)
	assert.Equal(t, "https://shop.example/p/2", status.Results[2].Data.URL)
	assert.Equal(t, int32(2), calls.Load())

	select {
	case d := <-hooks:
		assert.True(t, webhook.Verify("s3cret", d.body, d.signature))
		var event webhook.Event
		require.NoError(t, json.Unmarshal(d.body, &event))
		assert.Equal(t, webhook.EventBatchCompleted, event.Type)
		assert.Equal(t, accepted.ID, event.JobID)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestBatch_Validation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/batch/extract", `{"urls":[]}`, authed)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/batch/extract",
		`{"urls":["https://a.example/1","https://a.example/2","https://a.example/3","https://a.example/4"]}`, authed)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "maximum 3 URLs")

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/batch/batch-unknown", "", authed)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, calls.Load())
}

func newSearchServer(t *testing.T, s handler.Searcher) *httptest.Server {
	t.Helper()
	var calls atomic.Int32
	r := api.NewRouter(testConfig(), api.Deps{
		Service:   handler.NewService(counting(&calls), nil, 5*time.Second),
		Webhooks:  webhook.NewSender().WithRetryDelays(0),
		Searcher:  s,
		StartTime: time.Now(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	t.Parallel()

	queries := make(chan string, 1)
	best := models.SearchResult{Title: "Pigeon Kettle", Price: 749, Currency: "INR", Platform: "Amazon"}
	srv := newSearchServer(t, &mock.Searcher{SearchFn: func(_ context.Context, query string) (*models.SearchResults, error) {
		queries <- query
		return &models.SearchResults{
			Query: query,
			Results: map[string][]models.SearchResult{
				"amazon":   {best},
				"flipkart": {},
				"myntra":   {{Title: `Search "kettle" on Myntra`, URL: "https://www.myntra.com/kettle", Platform: "Myntra", IsSearchLink: true}},
			},
			BestDeal:     &best,
			TotalResults: 1,
		}, nil
	}})

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/search", `{"query":"kettle"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/search", `{"query":"kettle"}`, authed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kettle", <-queries)

	var out models.SearchResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Success)
	require.NotNil(t, out.SearchResults)
	assert.Equal(t, "kettle", out.Query)
	assert.Equal(t, 1, out.TotalResults)
	require.NotNil(t, out.BestDeal)
	assert.Equal(t, "Pigeon Kettle", out.BestDeal.Title)
	assert.Len(t, out.Results["myntra"], 1)
	assert.True(t, out.Results["myntra"][0].IsSearchLink)
	assert.Contains(t, string(data), `"bestDeal"`)
	assert.Contains(t, string(data), `"totalResults":1`)
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()

	srv := newSearchServer(t, &mock.Searcher{SearchFn: func(_ context.Context, query string) (*models.SearchResults, error) {
		if query == "k" {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "query must be at least 2 characters", nil)
		}
		return nil, errors.New("boom")
	}})

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/search", `{}`, authed)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), models.ErrCodeInvalidInput)

	resp, data = do(t, http.MethodPost, srv.URL+"/api/v1/search", `{"query":"k"}`, authed)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "at least 2 characters")

	resp, data = do(t, http.MethodPost, srv.URL+"/api/v1/search", `{"query":"kettle"}`, authed)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(data), models.ErrCodeInternal)
}

func TestSearch_NotMountedWithoutSearcher(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newServer(t, testConfig(), counting(&calls), nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/search", `{"query":"kettle"}`, authed)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
