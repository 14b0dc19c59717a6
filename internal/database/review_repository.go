package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
)

// reviewColumns must match the Scan order in scanReview.
const reviewColumns = `id, text, sentiment, emotion, confidence, all_emotions, source, url, created_at`

// ReviewRepo implements domain.ReviewStore backed by PostgreSQL. Id assignment
// and append atomicity come from the bigserial column and per-statement
// transactionality; Snapshot reads a consistent ordered prefix.
type ReviewRepo struct {
	pool     *pgxpool.Pool
	capacity int
}

// NewReviewRepo creates a ReviewRepo. capacity 0 means unbounded.
func NewReviewRepo(pool *pgxpool.Pool, capacity int) *ReviewRepo {
	return &ReviewRepo{pool: pool, capacity: capacity}
}

// Append stores the review and returns the database-assigned id.
func (r *ReviewRepo) Append(ctx context.Context, review domain.Review) (int64, error) {
	if r.capacity > 0 {
		count, err := r.Count(ctx)
		if err != nil {
			return 0, err
		}
		if count >= r.capacity {
			metrics.StoreAppendsRejectedTotal.Inc()
			return 0, domain.ErrStoreFull
		}
	}

	allEmotions, err := json.Marshal(review.AllEmotions)
	if err != nil {
		return 0, fmt.Errorf("failed to encode emotion scores: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO reviews (text, sentiment, emotion, confidence, all_emotions, source, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		review.Text, review.Sentiment, review.Emotion, review.Confidence,
		allEmotions, review.Source, review.URL, review.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	metrics.StoreSize.Inc()
	return id, nil
}

// Snapshot returns all reviews ordered by id.
func (r *ReviewRepo) Snapshot(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}

// Count returns the current number of stored reviews.
func (r *ReviewRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func scanReview(rows pgx.Rows) (domain.Review, error) {
	var (
		review      domain.Review
		allEmotions []byte
	)
	err := rows.Scan(
		&review.ID, &review.Text, &review.Sentiment, &review.Emotion,
		&review.Confidence, &allEmotions, &review.Source, &review.URL,
		&review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("failed to scan review: %w", err)
	}
	if err := json.Unmarshal(allEmotions, &review.AllEmotions); err != nil {
		return domain.Review{}, fmt.Errorf("failed to decode emotion scores: %w", err)
	}
	return review, nil
}
