package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sentiment labels. The sentiment set is closed; the emotion label set is
// configuration (see config.EmotionLabels) and deliberately not enumerated here.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SourceManual tags reviews submitted directly through the analyze endpoint.
const SourceManual = "manual"

// ValidSentiment reports whether s is one of the three sentiment labels.
func ValidSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// --- Model types ---

// Review is one classified unit of review text. Immutable once appended.
type Review struct {
	ID          int64              `json:"id"`
	Text        string             `json:"text"`
	Sentiment   string             `json:"sentiment"`
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions,omitempty"`
	Source      string             `json:"source"`
	URL         string             `json:"url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ClassificationResult is the classifier's verdict for one text.
type ClassificationResult struct {
	Sentiment   string             `json:"sentiment"`
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions"`
}

// HarvestedReview pairs an appended review with its position in the harvested
// item sequence. Skipped items leave gaps in HarvestIndex.
type HarvestedReview struct {
	Review       Review `json:"review"`
	HarvestIndex int    `json:"harvest_index"`
}

// HarvestResult summarizes one harvest batch. TotalHarvested counts raw items
// retrieved from the source; len(Reviews) may be smaller when items were
// skipped after failing classification.
type HarvestResult struct {
	JobID          uuid.UUID         `json:"job_id"`
	Source         string            `json:"source"`
	URL            string            `json:"url"`
	TotalHarvested int               `json:"total_reviews"`
	Skipped        int               `json:"skipped"`
	Reviews        []HarvestedReview `json:"results"`
}

// TrendBucket is one calendar day's sentiment counts within the trend window.
type TrendBucket struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
	Total    int    `json:"total"`
}

// AggregateView is the derived analytics snapshot. It is recomputed from the
// store on demand, never persisted. SentimentDistribution always carries all
// three sentiment keys; EmotionDistribution and SourceDistribution only carry
// labels that occur at least once.
type AggregateView struct {
	TotalReviews          int            `json:"total_reviews"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	EmotionDistribution   map[string]int `json:"emotion_distribution"`
	SourceDistribution    map[string]int `json:"source_distribution"`
	AvgConfidence         float64        `json:"avg_confidence"`
	TrendData             []TrendBucket  `json:"trend_data"`
}

// --- Interfaces ---

// ReviewStore is the authoritative append-only review collection. Append is
// serialized with respect to other appends; Snapshot returns an internally
// consistent point-in-time copy ordered by id.
type ReviewStore interface {
	Append(ctx context.Context, review Review) (int64, error)
	Snapshot(ctx context.Context) ([]Review, error)
	Count(ctx context.Context) (int, error)
}

// Classifier turns raw text into a classification result. Implementations
// return errors wrapping ErrClassificationFailed when the backing model is
// unavailable or produces malformed output.
type Classifier interface {
	Classify(ctx context.Context, text string) (ClassificationResult, error)
}

// Harvester retrieves an ordered sequence of raw text items from an external
// source. A harvester that can reach the source but finds no items fails with
// ErrHarvestFailed rather than returning an empty slice.
type Harvester interface {
	Harvest(ctx context.Context, source, url string) ([]string, error)
	Known(source string) bool
}

// AnalyticsCache stores the most recent aggregate view for fast reads.
// A Get miss is not an error; callers fall back to recomputation.
type AnalyticsCache interface {
	Get(ctx context.Context) (*AggregateView, bool)
	Set(ctx context.Context, view *AggregateView)
	Invalidate(ctx context.Context)
}

// AppService is the analytics facade, the only contract presentation and API
// code may call. All operations are safe for concurrent use.
type AppService interface {
	AnalyzeText(ctx context.Context, text string) (ClassificationResult, error)
	RunHarvest(ctx context.Context, source, url string) (*HarvestResult, error)
	GetAnalytics(ctx context.Context) (*AggregateView, error)
	ListReviews(ctx context.Context, page, perPage int) ([]Review, int, error)
}
