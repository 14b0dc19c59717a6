// Package analytics computes the aggregate view served to dashboards. Compute
// is a pure function of the snapshot, the reference time, and the options, so
// its output is exactly reproducible.
package analytics

import (
	"math"
	"time"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const dateLayout = "2006-01-02"

// Options control trend bucketing.
type Options struct {
	// WindowDays bounds the trend series to [now - WindowDays, now].
	WindowDays int
	// Location is the time zone used to derive calendar dates (UTC if nil).
	Location *time.Location
	// DenseTrend emits one bucket per day across the whole window, zero-filled.
	// The default is sparse: only days with at least one record appear.
	DenseTrend bool
}

// Compute derives the aggregate view from a store snapshot.
//
// TotalReviews, the distributions, and AvgConfidence cover the whole snapshot;
// only the trend series is bounded by the window. SentimentDistribution always
// carries all three sentiment keys so consumers can render a fixed-shape
// chart; EmotionDistribution and SourceDistribution are sparse because their
// label sets are open-ended.
func Compute(snapshot []domain.Review, now time.Time, opts Options) *domain.AggregateView {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	view := &domain.AggregateView{
		TotalReviews: len(snapshot),
		SentimentDistribution: map[string]int{
			domain.SentimentPositive: 0,
			domain.SentimentNegative: 0,
			domain.SentimentNeutral:  0,
		},
		EmotionDistribution: make(map[string]int),
		SourceDistribution:  make(map[string]int),
		TrendData:           []domain.TrendBucket{},
	}
	if len(snapshot) == 0 {
		return view
	}

	cutoff := now.AddDate(0, 0, -opts.WindowDays)
	buckets := make(map[string]*domain.TrendBucket)

	var confidenceSum float64
	for _, r := range snapshot {
		view.SentimentDistribution[r.Sentiment]++
		view.EmotionDistribution[r.Emotion]++
		if r.Source != "" {
			view.SourceDistribution[r.Source]++
		}
		confidenceSum += r.Confidence

		// A record exactly WindowDays before now is still inside the window.
		if r.CreatedAt.Before(cutoff) || r.CreatedAt.After(now) {
			continue
		}
		key := r.CreatedAt.In(loc).Format(dateLayout)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &domain.TrendBucket{Date: key}
			buckets[key] = bucket
		}
		switch r.Sentiment {
		case domain.SentimentPositive:
			bucket.Positive++
		case domain.SentimentNegative:
			bucket.Negative++
		case domain.SentimentNeutral:
			bucket.Neutral++
		}
		bucket.Total++
	}

	view.AvgConfidence = math.Round(confidenceSum/float64(len(snapshot))*10000) / 10000
	view.TrendData = orderedTrend(buckets, cutoff, now, loc, opts.DenseTrend)
	return view
}

// orderedTrend flattens the bucket map into an ascending date series. Dense
// mode walks every calendar day of the window; sparse mode only emits days
// that collected records.
func orderedTrend(buckets map[string]*domain.TrendBucket, cutoff, now time.Time, loc *time.Location, dense bool) []domain.TrendBucket {
	trend := []domain.TrendBucket{}

	start := dayStart(cutoff.In(loc))
	end := dayStart(now.In(loc))
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		if bucket, ok := buckets[key]; ok {
			trend = append(trend, *bucket)
		} else if dense {
			trend = append(trend, domain.TrendBucket{Date: key})
		}
	}
	return trend
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
