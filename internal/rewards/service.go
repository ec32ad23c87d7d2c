package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/niledreams/backend-travel/internal/cache"
	"github.com/niledreams/backend-travel/internal/store"
)

// Queries is the subset of the store the rewards service reads.
type Queries interface {
	ListRewardPhases(ctx context.Context) ([]store.RewardPhase, error)
	ListPhaseTrips(ctx context.Context) ([]store.RewardPhaseTrip, error)
	ListTripsByIDs(ctx context.Context, ids []string) ([]store.Trip, error)
}

// Service loads the active reward phase catalog, with a short-lived Redis
// cache in front of the database.
type Service struct {
	Store Queries
	Cache *cache.Cache
}

// Phases returns the active phases with their eligible trips, sorted by
// ascending threshold.
func (s *Service) Phases(ctx context.Context) ([]Phase, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("rewards: service not configured")
	}

	var cached []Phase
	if found, err := s.Cache.GetJSON(ctx, cache.KeyRewardPhases, &cached); err == nil && found {
		return cached, nil
	}

	rows, err := s.Store.ListRewardPhases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reward phases: %w", err)
	}
	links, err := s.Store.ListPhaseTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phase trips: %w", err)
	}

	tripIDs := make([]string, 0, len(links))
	seen := map[string]struct{}{}
	for _, link := range links {
		if _, ok := seen[link.TripID]; ok {
			continue
		}
		seen[link.TripID] = struct{}{}
		tripIDs = append(tripIDs, link.TripID)
	}
	trips, err := s.Store.ListTripsByIDs(ctx, tripIDs)
	if err != nil {
		return nil, fmt.Errorf("load phase trip details: %w", err)
	}
	tripByID := make(map[string]store.Trip, len(trips))
	for _, t := range trips {
		tripByID[t.ID] = t
	}

	linksByPhase := map[string][]store.RewardPhaseTrip{}
	for _, link := range links {
		linksByPhase[link.PhaseID] = append(linksByPhase[link.PhaseID], link)
	}

	phases := make([]Phase, 0, len(rows))
	for _, row := range rows {
		phase := Phase{
			ID:              row.ID,
			Name:            row.Name,
			Slug:            row.Slug,
			Headline:        row.Headline,
			Description:     row.Description,
			Position:        row.Position,
			ThresholdCents:  row.ThresholdCents,
			DiscountPercent: row.DiscountPercent,
			Currency:        row.Currency,
		}
		for _, link := range linksByPhase[row.ID] {
			trip, ok := tripByID[link.TripID]
			if !ok {
				continue
			}
			child := trip.BasePriceCents
			if trip.ChildPriceCents != nil {
				child = *trip.ChildPriceCents
			}
			phase.Trips = append(phase.Trips, PhaseTrip{
				TripID:          trip.ID,
				Slug:            trip.Slug,
				Title:           trip.Title,
				Position:        link.Position,
				CardImageURL:    trip.CardImageURL,
				BasePriceCents:  trip.BasePriceCents,
				ChildPriceCents: child,
			})
		}
		phases = append(phases, phase)
	}

	sorted := Sort(phases)
	_ = s.Cache.SetJSON(ctx, cache.KeyRewardPhases, sorted)
	return sorted, nil
}
