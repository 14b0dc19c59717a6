package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/reviewpulse/internal/config"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockAppService struct {
	analyzeResult domain.ClassificationResult
	analyzeErr    error
	harvestResult *domain.HarvestResult
	harvestErr    error
	view          *domain.AggregateView
	viewErr       error
	reviews       []domain.Review
	total         int
}

func (m *mockAppService) AnalyzeText(_ context.Context, _ string) (domain.ClassificationResult, error) {
	return m.analyzeResult, m.analyzeErr
}

func (m *mockAppService) RunHarvest(_ context.Context, _, _ string) (*domain.HarvestResult, error) {
	return m.harvestResult, m.harvestErr
}

func (m *mockAppService) GetAnalytics(_ context.Context) (*domain.AggregateView, error) {
	return m.view, m.viewErr
}

func (m *mockAppService) ListReviews(_ context.Context, _, _ int) ([]domain.Review, int, error) {
	return m.reviews, m.total, nil
}

// --- Helpers ---

func newTestServer(t *testing.T, app *mockAppService) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:                "8080",
		ScrapeRatePerMinute: 600,
		ScrapeBurst:         100,
	}
	hub := websocket.NewHub()
	t.Cleanup(hub.Stop)
	return NewServer(cfg, app, hub, nil, nil)
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandleAnalyzeSuccess(t *testing.T) {
	app := &mockAppService{
		analyzeResult: domain.ClassificationResult{
			Sentiment:   domain.SentimentPositive,
			Emotion:     "joy",
			Confidence:  0.9,
			AllEmotions: map[string]float64{"joy": 0.3},
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/analyze", `{"text":"great product"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.SentimentPositive, result.Sentiment)
	assert.Equal(t, "joy", result.Emotion)
}

func TestHandleAnalyzeValidationError(t *testing.T) {
	app := &mockAppService{
		analyzeErr: fmt.Errorf("%w: text must not be empty", domain.ErrInvalidInput),
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/analyze", `{"text":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp["type"])
	assert.NotEmpty(t, resp["error"])
}

func TestHandleAnalyzeClassifierDown(t *testing.T) {
	app := &mockAppService{
		analyzeErr: fmt.Errorf("%w: model unavailable", domain.ErrClassificationFailed),
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/analyze", `{"text":"fine"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleScrapeSuccess(t *testing.T) {
	jobID := uuid.New()
	app := &mockAppService{
		harvestResult: &domain.HarvestResult{
			JobID:          jobID,
			Source:         "yelp",
			URL:            "https://example.com",
			TotalHarvested: 3,
			Skipped:        1,
			Reviews: []domain.HarvestedReview{
				{Review: domain.Review{ID: 1, Text: "good stuff", Sentiment: "positive", Emotion: "joy", Confidence: 0.8}, HarvestIndex: 0},
				{Review: domain.Review{ID: 2, Text: "bad stuff", Sentiment: "negative", Emotion: "anger", Confidence: 0.7}, HarvestIndex: 2},
			},
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/scrape", `{"source":"yelp","url":"https://example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		JobID        string             `json:"job_id"`
		TotalReviews int                `json:"total_reviews"`
		Skipped      int                `json:"skipped"`
		Results      []scrapeResultItem `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, jobID.String(), resp.JobID)
	assert.Equal(t, 3, resp.TotalReviews)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "good stuff", resp.Results[0].OriginalText)
}

func TestHandleScrapeErrorCarriesContext(t *testing.T) {
	app := &mockAppService{
		harvestErr: fmt.Errorf("%w: no reviews found", domain.ErrHarvestFailed),
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/scrape", `{"source":"yelp","url":"https://example.com"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "external", resp["type"])
	ctx, ok := resp["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "yelp", ctx["source"])
}

func TestHandleAnalyticsShape(t *testing.T) {
	app := &mockAppService{
		view: &domain.AggregateView{
			TotalReviews:          2,
			SentimentDistribution: map[string]int{"positive": 1, "negative": 1, "neutral": 0},
			EmotionDistribution:   map[string]int{"joy": 1, "anger": 1},
			SourceDistribution:    map[string]int{"manual": 2},
			AvgConfidence:         0.85,
			TrendData:             []domain.TrendBucket{{Date: "2025-06-15", Positive: 1, Negative: 1, Total: 2}},
		},
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/analytics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.AggregateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.TotalReviews)
	assert.Len(t, view.SentimentDistribution, 3)
	require.Len(t, view.TrendData, 1)
	assert.Equal(t, "2025-06-15", view.TrendData[0].Date)
}

func TestHandleListReviews(t *testing.T) {
	app := &mockAppService{
		reviews: []domain.Review{{ID: 5, Text: "latest"}, {ID: 4, Text: "older"}},
		total:   5,
	}
	srv := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/reviews?page=1&per_page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Reviews     []domain.Review `json:"reviews"`
		Total       int             `json:"total"`
		Pages       int             `json:"pages"`
		CurrentPage int             `json:"current_page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, 1, resp.CurrentPage)
	require.Len(t, resp.Reviews, 2)
	assert.Equal(t, int64(5), resp.Reviews[0].ID)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without postgres and redis configured there is nothing to fail.
	rec = doRequest(srv, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryIntDefaults(t *testing.T) {
	app := &mockAppService{reviews: []domain.Review{}, total: 0}
	srv := newTestServer(t, app)

	// Garbage paging parameters fall back to defaults rather than erroring.
	rec := doRequest(srv, http.MethodGet, "/api/reviews?page=zero&per_page=-4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
