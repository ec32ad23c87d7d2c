package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const tripColumns = `id, slug, title, summary, description, destination, duration_days,
	base_price_cents, child_price_cents, card_image_url, hero_image_url, position,
	active, quick_add_eligible, recommended_trip_ids, created_at, updated_at`

func scanTrip(row pgx.Row) (Trip, error) {
	var t Trip
	err := row.Scan(
		&t.ID, &t.Slug, &t.Title, &t.Summary, &t.Description, &t.Destination,
		&t.DurationDays, &t.BasePriceCents, &t.ChildPriceCents, &t.CardImageURL,
		&t.HeroImageURL, &t.Position, &t.Active, &t.QuickAddEligible,
		&t.RecommendedTripIDs, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// TripFilter narrows ListTrips results.
type TripFilter struct {
	Destination string
	Query       string
	Limit       int
	Offset      int
}

// ListTrips returns active trips ordered by position.
func (s *Store) ListTrips(ctx context.Context, filter TripFilter) ([]Trip, error) {
	var (
		conds = []string{"active = TRUE"}
		args  []any
	)
	if dest := strings.TrimSpace(filter.Destination); dest != "" {
		args = append(args, dest)
		conds = append(conds, fmt.Sprintf("destination = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", len(args), len(args)))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM trips WHERE %s ORDER BY position, title LIMIT $%d OFFSET $%d`,
		tripColumns, strings.Join(conds, " AND "), len(args)-1, len(args),
	)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// GetTripBySlug fetches one active trip by slug.
func (s *Store) GetTripBySlug(ctx context.Context, slug string) (Trip, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE slug = $1 AND active = TRUE`, slug)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, ErrNotFound
	}
	if err != nil {
		return Trip{}, fmt.Errorf("get trip by slug: %w", err)
	}
	return t, nil
}

// GetTripByID fetches one trip by id regardless of active flag.
func (s *Store) GetTripByID(ctx context.Context, id string) (Trip, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, ErrNotFound
	}
	if err != nil {
		return Trip{}, fmt.Errorf("get trip by id: %w", err)
	}
	return t, nil
}

// ListTripsByIDs fetches trips preserving no particular order.
func (s *Store) ListTripsByIDs(ctx context.Context, ids []string) ([]Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ANY($1) AND active = TRUE`, ids)
	if err != nil {
		return nil, fmt.Errorf("list trips by ids: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// ListDestinations returns distinct destinations of active trips.
func (s *Store) ListDestinations(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT destination FROM trips WHERE active = TRUE AND destination <> '' ORDER BY destination`)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var dest string
		if err := rows.Scan(&dest); err != nil {
			return nil, err
		}
		out = append(out, dest)
	}
	return out, rows.Err()
}

// ListTripOptions returns active options for a trip ordered by position.
func (s *Store) ListTripOptions(ctx context.Context, tripID string) ([]TripOption, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, trip_id, label, price_cents, child_price_cents, position, active
		 FROM trip_options WHERE trip_id = $1 AND active = TRUE ORDER BY position, label`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list trip options: %w", err)
	}
	defer rows.Close()

	var opts []TripOption
	for rows.Next() {
		var o TripOption
		if err := rows.Scan(&o.ID, &o.TripID, &o.Label, &o.PriceCents, &o.ChildPriceCents, &o.Position, &o.Active); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// GetTripOption fetches a single option scoped to its trip.
func (s *Store) GetTripOption(ctx context.Context, tripID, optionID string) (TripOption, error) {
	var o TripOption
	err := s.Pool.QueryRow(ctx,
		`SELECT id, trip_id, label, price_cents, child_price_cents, position, active
		 FROM trip_options WHERE id = $1 AND trip_id = $2 AND active = TRUE`, optionID, tripID).
		Scan(&o.ID, &o.TripID, &o.Label, &o.PriceCents, &o.ChildPriceCents, &o.Position, &o.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return TripOption{}, ErrNotFound
	}
	if err != nil {
		return TripOption{}, fmt.Errorf("get trip option: %w", err)
	}
	return o, nil
}

// ListTripExtras returns active extras for a trip ordered by position.
func (s *Store) ListTripExtras(ctx context.Context, tripID string) ([]TripExtra, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, trip_id, name, price_cents, position, active
		 FROM trip_extras WHERE trip_id = $1 AND active = TRUE ORDER BY position, name`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list trip extras: %w", err)
	}
	defer rows.Close()

	var extras []TripExtra
	for rows.Next() {
		var e TripExtra
		if err := rows.Scan(&e.ID, &e.TripID, &e.Name, &e.PriceCents, &e.Position, &e.Active); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

// ListTripExtrasByIDs fetches extras scoped to a trip by id set.
func (s *Store) ListTripExtrasByIDs(ctx context.Context, tripID string, ids []string) ([]TripExtra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, trip_id, name, price_cents, position, active
		 FROM trip_extras WHERE trip_id = $1 AND id = ANY($2) AND active = TRUE ORDER BY position`, tripID, ids)
	if err != nil {
		return nil, fmt.Errorf("list trip extras by ids: %w", err)
	}
	defer rows.Close()

	var extras []TripExtra
	for rows.Next() {
		var e TripExtra
		if err := rows.Scan(&e.ID, &e.TripID, &e.Name, &e.PriceCents, &e.Position, &e.Active); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}
