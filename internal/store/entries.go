package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `id, cart_id, trip_id, trip_slug, trip_title, travel_date,
	adults, children, infants, base_price_cents, child_base_price_cents,
	option_json, extras_json, applied_phase_id, created_at, updated_at`

func scanEntry(row pgx.Row) (CartEntry, error) {
	var e CartEntry
	err := row.Scan(
		&e.ID, &e.CartID, &e.TripID, &e.TripSlug, &e.TripTitle, &e.TravelDate,
		&e.Adults, &e.Children, &e.Infants, &e.BasePriceCents, &e.ChildBasePriceCents,
		&e.OptionJSON, &e.ExtrasJSON, &e.AppliedPhaseID, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// ListEntries returns a cart's entries oldest first.
func (s *Store) ListEntries(ctx context.Context, cartID string) ([]CartEntry, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+entryColumns+` FROM cart_entries WHERE cart_id = $1 ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []CartEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEntriesTx is ListEntries inside an open transaction.
func ListEntriesTx(ctx context.Context, tx pgx.Tx, cartID string) ([]CartEntry, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+entryColumns+` FROM cart_entries WHERE cart_id = $1 ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []CartEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntryTx fetches an entry scoped to its cart inside a transaction.
func GetEntryTx(ctx context.Context, tx pgx.Tx, cartID, entryID string) (CartEntry, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM cart_entries WHERE id = $1 AND cart_id = $2`, entryID, cartID)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartEntry{}, ErrNotFound
	}
	if err != nil {
		return CartEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// InsertEntryTx inserts a cart entry inside a transaction.
func InsertEntryTx(ctx context.Context, tx pgx.Tx, e CartEntry) (CartEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := tx.QueryRow(ctx,
		`INSERT INTO cart_entries
		   (id, cart_id, trip_id, trip_slug, trip_title, travel_date, adults, children,
		    infants, base_price_cents, child_base_price_cents, option_json, extras_json, applied_phase_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 RETURNING `+entryColumns,
		e.ID, e.CartID, e.TripID, e.TripSlug, e.TripTitle, e.TravelDate, e.Adults, e.Children,
		e.Infants, e.BasePriceCents, e.ChildBasePriceCents, e.OptionJSON, e.ExtrasJSON, e.AppliedPhaseID)
	out, err := scanEntry(row)
	if err != nil {
		return CartEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	return out, nil
}

// UpdateEntryTx rewrites the mutable fields of an entry inside a transaction.
func UpdateEntryTx(ctx context.Context, tx pgx.Tx, e CartEntry) (CartEntry, error) {
	row := tx.QueryRow(ctx,
		`UPDATE cart_entries SET
		   travel_date = $3, adults = $4, children = $5, infants = $6,
		   option_json = $7, extras_json = $8, applied_phase_id = $9, updated_at = now()
		 WHERE id = $1 AND cart_id = $2
		 RETURNING `+entryColumns,
		e.ID, e.CartID, e.TravelDate, e.Adults, e.Children, e.Infants,
		e.OptionJSON, e.ExtrasJSON, e.AppliedPhaseID)
	out, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartEntry{}, ErrNotFound
	}
	if err != nil {
		return CartEntry{}, fmt.Errorf("update entry: %w", err)
	}
	return out, nil
}

// DeleteEntryTx removes an entry scoped to its cart inside a transaction.
func DeleteEntryTx(ctx context.Context, tx pgx.Tx, cartID, entryID string) error {
	tag, err := tx.Exec(ctx,
		`DELETE FROM cart_entries WHERE id = $1 AND cart_id = $2`, entryID, cartID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAppliedPhaseTx sets or clears the applied reward phase on an entry.
func SetAppliedPhaseTx(ctx context.Context, tx pgx.Tx, cartID, entryID string, phaseID *string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE cart_entries SET applied_phase_id = $3, updated_at = now()
		 WHERE id = $1 AND cart_id = $2`, entryID, cartID, phaseID)
	if err != nil {
		return fmt.Errorf("set applied phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAppliedPhasesTx removes every applied reward in the cart.
func ClearAppliedPhasesTx(ctx context.Context, tx pgx.Tx, cartID string) (int64, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE cart_entries SET applied_phase_id = NULL, updated_at = now()
		 WHERE cart_id = $1 AND applied_phase_id IS NOT NULL`, cartID)
	if err != nil {
		return 0, fmt.Errorf("clear applied phases: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountEntriesForTrip reports how many entries in the cart reference a trip.
func (s *Store) CountEntriesForTrip(ctx context.Context, cartID, tripID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM cart_entries WHERE cart_id = $1 AND trip_id = $2`, cartID, tripID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries for trip: %w", err)
	}
	return n, nil
}
