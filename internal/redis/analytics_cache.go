package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
	goredis "github.com/redis/go-redis/v9"
)

const analyticsCacheKey = "reviewpulse:analytics:view"

// AnalyticsCache caches the serialized aggregate view in Redis with a TTL.
// It is shared by all instances; the facade invalidates it on every append.
// Cache errors degrade to recomputation, never to request failure.
type AnalyticsCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a cache with the given TTL.
func NewAnalyticsCache(client *goredis.Client, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl}
}

// Get implements domain.AnalyticsCache.
func (c *AnalyticsCache) Get(ctx context.Context) (*domain.AggregateView, bool) {
	raw, err := c.client.Get(ctx, analyticsCacheKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			slog.Warn("Analytics cache read failed", "error", err)
		}
		metrics.AnalyticsCacheMisses.Inc()
		return nil, false
	}

	var view domain.AggregateView
	if err := json.Unmarshal(raw, &view); err != nil {
		slog.Warn("Analytics cache entry malformed, dropping", "error", err)
		c.Invalidate(ctx)
		metrics.AnalyticsCacheMisses.Inc()
		return nil, false
	}

	metrics.AnalyticsCacheHits.Inc()
	return &view, true
}

// Set implements domain.AnalyticsCache.
func (c *AnalyticsCache) Set(ctx context.Context, view *domain.AggregateView) {
	raw, err := json.Marshal(view)
	if err != nil {
		slog.Warn("Analytics cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, analyticsCacheKey, raw, c.ttl).Err(); err != nil {
		slog.Warn("Analytics cache write failed", "error", err)
	}
}

// Invalidate implements domain.AnalyticsCache.
func (c *AnalyticsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, analyticsCacheKey).Err(); err != nil {
		slog.Warn("Analytics cache invalidation failed", "error", err)
	}
}
