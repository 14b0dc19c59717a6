package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
	"github.com/sony/gobreaker"
)

const httpClassifyTimeout = 10 * time.Second

// HTTPClassifier calls an external model service
// (POST {url} {"text": ...} -> {"sentiment","emotion","confidence","all_emotions"}).
// Calls run through a circuit breaker so a dead model service fails fast
// instead of tying up every request for the full timeout.
type HTTPClassifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClassifier creates a classifier client for the given endpoint URL.
func NewHTTPClassifier(url string) *HTTPClassifier {
	settings := gobreaker.Settings{
		Name:    "classifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			metrics.ClassifierBreakerState.Set(breakerStateValue(to))
		},
	}
	return &HTTPClassifier{
		url:     url,
		client:  &http.Client{Timeout: httpClassifyTimeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

// Classify implements domain.Classifier.
func (h *HTTPClassifier) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	result, err := h.breaker.Execute(func() (any, error) {
		return h.call(ctx, text)
	})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}
	return result.(domain.ClassificationResult), nil
}

func (h *HTTPClassifier) call(ctx context.Context, text string) (domain.ClassificationResult, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classifier unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.ClassificationResult{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("read response: %w", err)
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("malformed response: %w", err)
	}
	return result, nil
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
