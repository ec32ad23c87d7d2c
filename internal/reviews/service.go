package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/events"
	"github.com/niledreams/backend-travel/internal/obs"
	"github.com/niledreams/backend-travel/internal/store"
)

type queryProvider interface {
	GetTripBySlug(ctx context.Context, slug string) (store.Trip, error)
	InsertReview(ctx context.Context, r store.Review) (store.Review, error)
	ListPublishedReviews(ctx context.Context, tripID string, limit, offset int) ([]store.Review, error)
	GetReviewStats(ctx context.Context, tripID string) (store.ReviewStats, error)
}

// Service handles trip review submission and listing.
type Service struct {
	Queries  queryProvider
	Bus      *events.Bus
	Validate *validator.Validate
}

// Input is the review submission payload.
type Input struct {
	Author string `json:"author" validate:"required,min=2,max=80"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"max=120"`
	Body   string `json:"body" validate:"required,min=10,max=4000"`
}

// View is the public review representation.
type View struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// ListResult bundles reviews with aggregate stats.
type ListResult struct {
	Reviews []View  `json:"reviews"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Submit validates and stores a review for the trip, pending moderation.
func (s *Service) Submit(ctx context.Context, tripSlug string, in Input) (View, error) {
	if s == nil || s.Queries == nil {
		return View{}, errors.New("reviews: service not configured")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return View{}, common.NewAppError("VALIDATION", "invalid review payload", http.StatusBadRequest, err)
		}
	}
	trip, err := s.Queries.GetTripBySlug(ctx, tripSlug)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, common.NewAppError("NOT_FOUND", "trip not found", http.StatusNotFound, err)
	}
	if err != nil {
		return View{}, fmt.Errorf("load trip: %w", err)
	}

	review, err := s.Queries.InsertReview(ctx, store.Review{
		TripID: trip.ID,
		Author: in.Author,
		Rating: in.Rating,
		Title:  in.Title,
		Body:   in.Body,
	})
	if err != nil {
		return View{}, fmt.Errorf("insert review: %w", err)
	}

	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicReviewSubmitted, map[string]any{
			"review_id": review.ID,
			"trip_id":   trip.ID,
			"trip_slug": trip.Slug,
			"rating":    review.Rating,
		})
	}
	if obs.ReviewSubmittedTotal != nil {
		obs.ReviewSubmittedTotal.Inc()
	}
	return toView(review), nil
}

// List returns published reviews with aggregate stats for a trip.
func (s *Service) List(ctx context.Context, tripSlug string, limit, offset int) (ListResult, error) {
	if s == nil || s.Queries == nil {
		return ListResult{}, errors.New("reviews: service not configured")
	}
	trip, err := s.Queries.GetTripBySlug(ctx, tripSlug)
	if errors.Is(err, store.ErrNotFound) {
		return ListResult{}, common.NewAppError("NOT_FOUND", "trip not found", http.StatusNotFound, err)
	}
	if err != nil {
		return ListResult{}, fmt.Errorf("load trip: %w", err)
	}
	rows, err := s.Queries.ListPublishedReviews(ctx, trip.ID, limit, offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("list reviews: %w", err)
	}
	stats, err := s.Queries.GetReviewStats(ctx, trip.ID)
	if err != nil {
		return ListResult{}, fmt.Errorf("review stats: %w", err)
	}
	result := ListResult{Reviews: make([]View, 0, len(rows)), Count: stats.Count, Average: stats.Average}
	for _, row := range rows {
		result.Reviews = append(result.Reviews, toView(row))
	}
	return result, nil
}

func toView(r store.Review) View {
	return View{
		ID:        r.ID,
		Author:    r.Author,
		Rating:    r.Rating,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
