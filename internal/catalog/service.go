package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/niledreams/backend-travel/internal/cache"
	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/pricing"
	"github.com/niledreams/backend-travel/internal/store"
)

type queryProvider interface {
	ListTrips(ctx context.Context, filter store.TripFilter) ([]store.Trip, error)
	GetTripBySlug(ctx context.Context, slug string) (store.Trip, error)
	ListTripsByIDs(ctx context.Context, ids []string) ([]store.Trip, error)
	ListDestinations(ctx context.Context) ([]string, error)
	ListTripOptions(ctx context.Context, tripID string) ([]store.TripOption, error)
	ListTripExtras(ctx context.Context, tripID string) ([]store.TripExtra, error)
	GetReviewStats(ctx context.Context, tripID string) (store.ReviewStats, error)
}

// Service orchestrates trip catalog queries, DTO assembly, and caching.
type Service struct {
	Queries        queryProvider
	Cache          *cache.Cache
	WhatsAppNumber string
	DefaultLimit   int
	MaxLimit       int
}

// ListParams captures filters for trip listing.
type ListParams struct {
	Destination string
	Query       string
	Limit       int
	Offset      int
}

// TripCard is the listing representation of a trip.
type TripCard struct {
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	Destination      string `json:"destination"`
	DurationDays     int    `json:"duration_days"`
	BasePriceCents   int64  `json:"base_price_cents"`
	ChildPriceCents  *int64 `json:"child_price_cents,omitempty"`
	PriceDisplay     string `json:"price_display"`
	CardImageURL     string `json:"card_image_url,omitempty"`
	QuickAddEligible bool   `json:"quick_add_eligible"`
}

// OptionView is the public representation of a trip option.
type OptionView struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	PriceCents      *int64 `json:"price_cents,omitempty"`
	ChildPriceCents *int64 `json:"child_price_cents,omitempty"`
	PriceDisplay    string `json:"price_display,omitempty"`
}

// ExtraView is the public representation of a trip extra.
type ExtraView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	PriceDisplay string `json:"price_display"`
}

// ReviewSummary aggregates published review stats for the detail page.
type ReviewSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// TripDetail aggregates the full trip detail payload.
type TripDetail struct {
	TripCard
	Description    string        `json:"description"`
	HeroImageURL   string        `json:"hero_image_url,omitempty"`
	Options        []OptionView  `json:"options"`
	Extras         []ExtraView   `json:"extras"`
	Reviews        ReviewSummary `json:"reviews"`
	Related        []TripCard    `json:"related"`
	BookingHelpURL string        `json:"booking_help_url,omitempty"`
}

// ParseListParams validates query string filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Destination: strings.TrimSpace(values.Get("destination")),
		Query:       strings.TrimSpace(values.Get("q")),
		Limit:       common.AtoiDefault(values.Get("limit"), s.defaultLimit()),
		Offset:      common.AtoiDefault(values.Get("offset"), 0),
	}
	if params.Limit < 1 || params.Limit > s.maxLimit() {
		return ListParams{}, common.NewAppError("VALIDATION", fmt.Sprintf("limit must be between 1 and %d", s.maxLimit()), 400, nil)
	}
	if params.Offset < 0 {
		return ListParams{}, common.NewAppError("VALIDATION", "offset must not be negative", 400, nil)
	}
	return params, nil
}

// ListTrips returns trip cards for the listing page.
func (s *Service) ListTrips(ctx context.Context, params ListParams) ([]TripCard, error) {
	if s == nil || s.Queries == nil {
		return nil, errors.New("catalog: service not configured")
	}
	key := cache.KeyTripList(params.Destination, params.Query, params.Limit, params.Offset)
	var cached []TripCard
	if found, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	rows, err := s.Queries.ListTrips(ctx, store.TripFilter{
		Destination: params.Destination,
		Query:       params.Query,
		Limit:       params.Limit,
		Offset:      params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	cards := make([]TripCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, tripCard(row))
	}
	_ = s.Cache.SetJSON(ctx, key, cards)
	return cards, nil
}

// GetTripDetail assembles the detail payload for one trip.
func (s *Service) GetTripDetail(ctx context.Context, slug string) (TripDetail, error) {
	if s == nil || s.Queries == nil {
		return TripDetail{}, errors.New("catalog: service not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return TripDetail{}, common.NewAppError("VALIDATION", "trip slug is required", 400, nil)
	}

	key := cache.KeyTrip(slug)
	var cached TripDetail
	if found, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	trip, err := s.Queries.GetTripBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return TripDetail{}, common.NewAppError("NOT_FOUND", "trip not found", 404, err)
	}
	if err != nil {
		return TripDetail{}, fmt.Errorf("get trip: %w", err)
	}

	options, err := s.Queries.ListTripOptions(ctx, trip.ID)
	if err != nil {
		return TripDetail{}, fmt.Errorf("list options: %w", err)
	}
	extras, err := s.Queries.ListTripExtras(ctx, trip.ID)
	if err != nil {
		return TripDetail{}, fmt.Errorf("list extras: %w", err)
	}
	stats, err := s.Queries.GetReviewStats(ctx, trip.ID)
	if err != nil {
		return TripDetail{}, fmt.Errorf("review stats: %w", err)
	}

	detail := TripDetail{
		TripCard:     tripCard(trip),
		Description:  trip.Description,
		HeroImageURL: trip.HeroImageURL,
		Options:      make([]OptionView, 0, len(options)),
		Extras:       make([]ExtraView, 0, len(extras)),
		Reviews:      ReviewSummary{Count: stats.Count, Average: stats.Average},
		Related:      []TripCard{},
	}
	for _, opt := range options {
		view := OptionView{
			ID:              opt.ID,
			Label:           opt.Label,
			PriceCents:      opt.PriceCents,
			ChildPriceCents: opt.ChildPriceCents,
		}
		if opt.PriceCents != nil {
			view.PriceDisplay = pricing.FormatCents(*opt.PriceCents)
		}
		detail.Options = append(detail.Options, view)
	}
	for _, extra := range extras {
		detail.Extras = append(detail.Extras, ExtraView{
			ID:           extra.ID,
			Name:         extra.Name,
			PriceCents:   extra.PriceCents,
			PriceDisplay: pricing.FormatCents(extra.PriceCents),
		})
	}
	if len(trip.RecommendedTripIDs) > 0 {
		related, err := s.Queries.ListTripsByIDs(ctx, trip.RecommendedTripIDs)
		if err != nil {
			return TripDetail{}, fmt.Errorf("list related: %w", err)
		}
		for _, rel := range related {
			if rel.ID == trip.ID {
				continue
			}
			detail.Related = append(detail.Related, tripCard(rel))
		}
	}
	detail.BookingHelpURL = common.WhatsAppLink(s.WhatsAppNumber,
		fmt.Sprintf("Hi! I have a question about the %s trip.", trip.Title))

	_ = s.Cache.SetJSON(ctx, key, detail)
	return detail, nil
}

// Destinations lists distinct destinations of active trips.
func (s *Service) Destinations(ctx context.Context) ([]string, error) {
	if s == nil || s.Queries == nil {
		return nil, errors.New("catalog: service not configured")
	}
	dests, err := s.Queries.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	if dests == nil {
		dests = []string{}
	}
	return dests, nil
}

func (s *Service) defaultLimit() int {
	if s == nil || s.DefaultLimit <= 0 {
		return 24
	}
	return s.DefaultLimit
}

func (s *Service) maxLimit() int {
	if s == nil || s.MaxLimit <= 0 {
		return 100
	}
	return s.MaxLimit
}

func tripCard(t store.Trip) TripCard {
	return TripCard{
		ID:               t.ID,
		Slug:             t.Slug,
		Title:            t.Title,
		Summary:          t.Summary,
		Destination:      t.Destination,
		DurationDays:     t.DurationDays,
		BasePriceCents:   t.BasePriceCents,
		ChildPriceCents:  t.ChildPriceCents,
		PriceDisplay:     pricing.FormatCents(t.BasePriceCents),
		CardImageURL:     t.CardImageURL,
		QuickAddEligible: t.QuickAddEligible,
	}
}
