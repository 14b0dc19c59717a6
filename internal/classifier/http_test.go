package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifierSuccess(t *testing.T) {
	var gotBody classifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(domain.ClassificationResult{
			Sentiment:   domain.SentimentPositive,
			Emotion:     "joy",
			Confidence:  0.92,
			AllEmotions: map[string]float64{"joy": 0.4},
		})
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL)
	result, err := c.Classify(context.Background(), "what a great stay")

	require.NoError(t, err)
	assert.Equal(t, "what a great stay", gotBody.Text)
	assert.Equal(t, domain.SentimentPositive, result.Sentiment)
	assert.Equal(t, "joy", result.Emotion)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
}

func TestHTTPClassifierServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL)
	_, err := c.Classify(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrClassificationFailed)
}

func TestHTTPClassifierMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL)
	_, err := c.Classify(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrClassificationFailed)
}

func TestHTTPClassifierUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // shut down before calling

	c := NewHTTPClassifier(server.URL)
	_, err := c.Classify(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrClassificationFailed)
}

func TestHTTPClassifierBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	countingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer countingServer.Close()

	c := NewHTTPClassifier(countingServer.URL)
	for i := 0; i < 10; i++ {
		_, err := c.Classify(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrClassificationFailed)
	}

	// The breaker trips after five consecutive failures and stops calling out.
	assert.Equal(t, 5, calls)
}
