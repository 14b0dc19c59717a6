package store

import (
	"context"
	"sync"
	"testing"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := s.Append(ctx, domain.Review{Text: "text", Sentiment: domain.SentimentNeutral})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

func TestSnapshotOrderedAndIsolated(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	_, err := s.Append(ctx, domain.Review{Text: "first", Sentiment: domain.SentimentPositive})
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.Review{Text: "second", Sentiment: domain.SentimentNegative})
	require.NoError(t, err)

	snapshot, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "first", snapshot[0].Text)
	assert.Equal(t, "second", snapshot[1].Text)

	// Appends after the snapshot must not show up in it.
	_, err = s.Append(ctx, domain.Review{Text: "third", Sentiment: domain.SentimentNeutral})
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)

	// Mutating the snapshot must not corrupt the store.
	snapshot[0].Text = "mutated"
	fresh, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", fresh[0].Text)
}

func TestAppendRejectsWhenFull(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	_, err := s.Append(ctx, domain.Review{Text: "one"})
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.Review{Text: "two"})
	require.NoError(t, err)

	_, err = s.Append(ctx, domain.Review{Text: "three"})
	assert.ErrorIs(t, err, domain.ErrStoreFull)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestConcurrentAppendsGetDistinctIDs(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	const goroutines = 100
	ids := make(chan int64, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Append(ctx, domain.Review{Text: "concurrent", Sentiment: domain.SentimentNeutral})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{})
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "id %d assigned twice", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, goroutines)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, goroutines, count)
}
