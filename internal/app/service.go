package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/reviewpulse/internal/analytics"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// AnalyticsPublisher receives the fresh aggregate view after every successful
// append. The websocket hub implements it; a nil publisher disables push.
type AnalyticsPublisher interface {
	Publish(view *domain.AggregateView)
}

// RefreshNotifier tells peer instances that the store changed so they can
// refresh their own connected clients. Implemented by coordination.Notifier.
type RefreshNotifier interface {
	NotifyRefresh(ctx context.Context)
}

// Service implements domain.AppService.
type Service struct {
	store     domain.ReviewStore
	gateway   domain.Classifier
	harvester domain.Harvester
	cache     domain.AnalyticsCache
	publisher AnalyticsPublisher
	notifier  RefreshNotifier
	clock     clockwork.Clock
	opts      analytics.Options
	group     singleflight.Group
}

// NewService creates the facade. cache and publisher may be nil.
func NewService(
	store domain.ReviewStore,
	gateway domain.Classifier,
	harvester domain.Harvester,
	cache domain.AnalyticsCache,
	publisher AnalyticsPublisher,
	clock clockwork.Clock,
	opts analytics.Options,
) *Service {
	return &Service{
		store:     store,
		gateway:   gateway,
		harvester: harvester,
		cache:     cache,
		publisher: publisher,
		clock:     clock,
		opts:      opts,
	}
}

// SetRefreshNotifier enables cross-instance refresh notifications.
func (s *Service) SetRefreshNotifier(notifier RefreshNotifier) {
	s.notifier = notifier
}

// OnPeerRefresh pushes the current aggregate view to this instance's own
// subscribers after a peer instance changed the store. It never notifies back.
func (s *Service) OnPeerRefresh(ctx context.Context) {
	view, err := s.GetAnalytics(ctx)
	if err != nil {
		slog.Error("Failed to refresh view after peer notification", "error", err)
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(view)
	}
}

// AnalyzeText classifies a single text, appends it with source "manual", and
// returns the classification. Nothing is appended when classification fails.
func (s *Service) AnalyzeText(ctx context.Context, text string) (domain.ClassificationResult, error) {
	result, err := s.gateway.Classify(ctx, text)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	review := domain.Review{
		Text:        text,
		Sentiment:   result.Sentiment,
		Emotion:     result.Emotion,
		Confidence:  result.Confidence,
		AllEmotions: result.AllEmotions,
		Source:      domain.SourceManual,
		CreatedAt:   s.clock.Now().UTC(),
	}
	id, err := s.store.Append(ctx, review)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	metrics.ReviewsIngestedTotal.WithLabelValues(domain.SourceManual).Inc()
	slog.Info("Review analyzed", "id", id, "sentiment", result.Sentiment, "emotion", result.Emotion)

	s.refreshView(ctx)
	return result, nil
}

// RunHarvest retrieves raw items from the source, classifies them in order,
// and appends the successes. Items whose classification fails are skipped; a
// single bad item never aborts the batch. The batch is not atomic: appends
// made before a later failure or cancellation are retained.
func (s *Service) RunHarvest(ctx context.Context, source, url string) (*domain.HarvestResult, error) {
	if url == "" {
		metrics.HarvestsTotal.WithLabelValues(source, "invalid").Inc()
		return nil, fmt.Errorf("%w: url must not be empty", domain.ErrInvalidInput)
	}
	if !s.harvester.Known(source) {
		metrics.HarvestsTotal.WithLabelValues(source, "invalid").Inc()
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, source)
	}

	start := s.clock.Now()
	defer func() {
		metrics.HarvestDuration.Observe(s.clock.Since(start).Seconds())
	}()

	result := &domain.HarvestResult{
		JobID:   uuid.New(),
		Source:  source,
		URL:     url,
		Reviews: []domain.HarvestedReview{},
	}
	logger := slog.With("job_id", result.JobID.String(), "source", source)
	logger.Info("Harvest started", "url", url)

	items, err := s.harvester.Harvest(ctx, source, url)
	if err != nil {
		metrics.HarvestsTotal.WithLabelValues(source, "failed").Inc()
		return nil, err
	}
	result.TotalHarvested = len(items)

	for i, item := range items {
		// Cancellation between items keeps everything appended so far.
		if err := ctx.Err(); err != nil {
			logger.Warn("Harvest cancelled", "appended", len(result.Reviews), "of", len(items))
			if len(result.Reviews) > 0 {
				s.refreshView(ctx)
			}
			return result, err
		}

		classification, err := s.gateway.Classify(ctx, item)
		if err != nil {
			result.Skipped++
			metrics.HarvestItemsSkippedTotal.WithLabelValues(source).Inc()
			logger.Warn("Skipping unclassifiable item", "harvest_index", i, "error", err)
			continue
		}

		review := domain.Review{
			Text:        item,
			Sentiment:   classification.Sentiment,
			Emotion:     classification.Emotion,
			Confidence:  classification.Confidence,
			AllEmotions: classification.AllEmotions,
			Source:      source,
			URL:         url,
			CreatedAt:   s.clock.Now().UTC(),
		}
		id, err := s.store.Append(ctx, review)
		if err != nil {
			// A full (or failing) store aborts the remainder of the batch;
			// earlier appends stay.
			logger.Error("Append failed, aborting batch", "harvest_index", i, "error", err)
			if errors.Is(err, domain.ErrStoreFull) {
				metrics.HarvestsTotal.WithLabelValues(source, "failed").Inc()
			}
			if len(result.Reviews) > 0 {
				s.refreshView(ctx)
			}
			return result, err
		}
		review.ID = id
		metrics.ReviewsIngestedTotal.WithLabelValues(source).Inc()
		result.Reviews = append(result.Reviews, domain.HarvestedReview{Review: review, HarvestIndex: i})
	}

	metrics.HarvestsTotal.WithLabelValues(source, "ok").Inc()
	logger.Info("Harvest finished",
		"total_harvested", result.TotalHarvested,
		"appended", len(result.Reviews),
		"skipped", result.Skipped,
	)

	if len(result.Reviews) > 0 {
		s.refreshView(ctx)
	}
	return result, nil
}

// GetAnalytics returns the aggregate view, serving the cached copy when fresh
// and collapsing concurrent recomputations into one.
func (s *Service) GetAnalytics(ctx context.Context) (*domain.AggregateView, error) {
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx); ok {
			return view, nil
		}
	}

	view, err, _ := s.group.Do("analytics", func() (any, error) {
		return s.computeView(ctx)
	})
	if err != nil {
		return nil, err
	}
	return view.(*domain.AggregateView), nil
}

// ListReviews returns one page of reviews, newest first, and the total count.
func (s *Service) ListReviews(ctx context.Context, page, perPage int) ([]domain.Review, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Snapshot is ordered by id ascending; walk it backwards for newest first.
	total := len(snapshot)
	start := total - (page-1)*perPage
	if start <= 0 {
		return []domain.Review{}, total, nil
	}
	end := start - perPage
	if end < 0 {
		end = 0
	}

	reviews := make([]domain.Review, 0, start-end)
	for i := start - 1; i >= end; i-- {
		reviews = append(reviews, snapshot[i])
	}
	return reviews, total, nil
}

func (s *Service) computeView(ctx context.Context) (*domain.AggregateView, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot store: %w", err)
	}

	start := s.clock.Now()
	view := analytics.Compute(snapshot, s.clock.Now(), s.opts)
	metrics.AnalyticsComputeDuration.Observe(s.clock.Since(start).Seconds())

	if s.cache != nil {
		s.cache.Set(ctx, view)
	}
	return view, nil
}

// refreshView recomputes the aggregate view after a successful append, updates
// the cache, and pushes the result to live subscribers. Failures here must not
// fail the append that triggered the refresh.
func (s *Service) refreshView(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if s.cache != nil {
		s.cache.Invalidate(refreshCtx)
	}

	view, err := s.computeView(refreshCtx)
	if err != nil {
		slog.Error("Failed to refresh aggregate view", "error", err)
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(view)
	}
	if s.notifier != nil {
		s.notifier.NotifyRefresh(refreshCtx)
	}
}
