package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
)

// Gateway adapts raw text to classification results. It rejects empty input
// before spending a classifier call, and validates the classifier's output so
// that no malformed record can ever reach the store. The gateway itself never
// retries; retry policy belongs to the caller.
type Gateway struct {
	classifier domain.Classifier
	clock      clockwork.Clock
}

// NewGateway wraps a classifier.
func NewGateway(classifier domain.Classifier, clock clockwork.Clock) *Gateway {
	return &Gateway{classifier: classifier, clock: clock}
}

// Classify implements domain.Classifier.
func (g *Gateway) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		metrics.ClassificationsTotal.WithLabelValues("invalid_input").Inc()
		return domain.ClassificationResult{}, fmt.Errorf("%w: text must not be empty", domain.ErrInvalidInput)
	}

	start := g.clock.Now()
	result, err := g.classifier.Classify(ctx, text)
	metrics.ClassificationDuration.Observe(g.clock.Since(start).Seconds())
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, domain.ErrClassificationFailed) {
			return domain.ClassificationResult{}, err
		}
		return domain.ClassificationResult{}, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}

	if err := validateResult(result); err != nil {
		metrics.ClassificationsTotal.WithLabelValues("failed").Inc()
		return domain.ClassificationResult{}, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}

	metrics.ClassificationsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func validateResult(result domain.ClassificationResult) error {
	if !domain.ValidSentiment(result.Sentiment) {
		return fmt.Errorf("unknown sentiment %q", result.Sentiment)
	}
	if result.Emotion == "" {
		return fmt.Errorf("missing emotion label")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", result.Confidence)
	}
	for label, score := range result.AllEmotions {
		if score < 0 || score > 1 {
			return fmt.Errorf("emotion score %v for %q outside [0,1]", score, label)
		}
	}
	return nil
}
