// Package store provides the in-memory review store, the default backing for
// the pipeline when no database is configured and the reference semantics for
// the ReviewStore contract.
package store

import (
	"context"
	"sync"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
)

// MemoryStore is a mutex-guarded append-only review log. Ids are assigned
// monotonically under the write lock, so they are unique and strictly
// increasing in append order. Snapshot copies the record slice under a read
// lock; readers never observe a partially-appended record.
type MemoryStore struct {
	mu       sync.RWMutex
	reviews  []domain.Review
	nextID   int64
	capacity int
}

// NewMemoryStore creates an empty store. capacity 0 means unbounded.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{nextID: 1, capacity: capacity}
}

// Append stores the review and returns its assigned id.
func (s *MemoryStore) Append(_ context.Context, review domain.Review) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.reviews) >= s.capacity {
		metrics.StoreAppendsRejectedTotal.Inc()
		return 0, domain.ErrStoreFull
	}

	review.ID = s.nextID
	s.nextID++
	s.reviews = append(s.reviews, review)
	metrics.StoreSize.Set(float64(len(s.reviews)))
	return review.ID, nil
}

// Snapshot returns a point-in-time copy of all reviews ordered by id.
func (s *MemoryStore) Snapshot(_ context.Context) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Review, len(s.reviews))
	copy(snapshot, s.reviews)
	return snapshot, nil
}

// Count returns the current number of stored reviews.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews), nil
}
