package store

import (
	"context"
	"fmt"
)

// PhaseWithTrips bundles a reward phase with its eligible trips.
type PhaseWithTrips struct {
	Phase RewardPhase
	Trips []Trip
}

// ListRewardPhases returns active phases ordered by threshold then position.
func (s *Store) ListRewardPhases(ctx context.Context) ([]RewardPhase, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, slug, name, headline, description, position, threshold_cents,
		        discount_percent, currency, active
		 FROM reward_phases WHERE active = TRUE
		 ORDER BY threshold_cents, position`)
	if err != nil {
		return nil, fmt.Errorf("list reward phases: %w", err)
	}
	defer rows.Close()

	var phases []RewardPhase
	for rows.Next() {
		var p RewardPhase
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Headline, &p.Description,
			&p.Position, &p.ThresholdCents, &p.DiscountPercent, &p.Currency, &p.Active); err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// ListPhaseTrips returns the phase to trip links for all active phases.
func (s *Store) ListPhaseTrips(ctx context.Context) ([]RewardPhaseTrip, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT pt.phase_id, pt.trip_id, pt.position
		 FROM reward_phase_trips pt
		 JOIN reward_phases p ON p.id = pt.phase_id AND p.active = TRUE
		 JOIN trips t ON t.id = pt.trip_id AND t.active = TRUE
		 ORDER BY pt.phase_id, pt.position`)
	if err != nil {
		return nil, fmt.Errorf("list phase trips: %w", err)
	}
	defer rows.Close()

	var links []RewardPhaseTrip
	for rows.Next() {
		var link RewardPhaseTrip
		if err := rows.Scan(&link.PhaseID, &link.TripID, &link.Position); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
