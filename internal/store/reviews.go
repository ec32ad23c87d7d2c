package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ReviewStats aggregates published review ratings for a trip.
type ReviewStats struct {
	Count   int
	Average float64
}

// InsertReview stores a new review pending moderation.
func (s *Store) InsertReview(ctx context.Context, r Review) (Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO reviews (id, trip_id, author, rating, title, body, published)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, trip_id, author, rating, title, body, published, created_at`,
		r.ID, r.TripID, r.Author, r.Rating, r.Title, r.Body, r.Published)
	var out Review
	if err := row.Scan(&out.ID, &out.TripID, &out.Author, &out.Rating, &out.Title, &out.Body, &out.Published, &out.CreatedAt); err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return out, nil
}

// ListPublishedReviews returns published reviews for a trip newest first.
func (s *Store) ListPublishedReviews(ctx context.Context, tripID string, limit, offset int) ([]Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, trip_id, author, rating, title, body, published, created_at
		 FROM reviews WHERE trip_id = $1 AND published = TRUE
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, tripID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.TripID, &r.Author, &r.Rating, &r.Title, &r.Body, &r.Published, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// GetReviewStats aggregates rating stats for a trip.
func (s *Store) GetReviewStats(ctx context.Context, tripID string) (ReviewStats, error) {
	var stats ReviewStats
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(avg(rating), 0)
		 FROM reviews WHERE trip_id = $1 AND published = TRUE`, tripID).
		Scan(&stats.Count, &stats.Average)
	if err != nil {
		return ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}
	return stats, nil
}
