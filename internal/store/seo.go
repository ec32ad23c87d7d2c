package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const seoColumns = `id, path, title, description, redirect_to, status_code, created_at, updated_at`

func scanSEO(row pgx.Row) (SEOEntry, error) {
	var e SEOEntry
	err := row.Scan(&e.ID, &e.Path, &e.Title, &e.Description, &e.RedirectTo, &e.StatusCode, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetSEOEntryByPath resolves metadata or a redirect for a request path.
func (s *Store) GetSEOEntryByPath(ctx context.Context, path string) (SEOEntry, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+seoColumns+` FROM seo_entries WHERE path = $1`, path)
	e, err := scanSEO(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SEOEntry{}, ErrNotFound
	}
	if err != nil {
		return SEOEntry{}, fmt.Errorf("get seo entry: %w", err)
	}
	return e, nil
}

// ListSEOEntries returns all entries ordered by path.
func (s *Store) ListSEOEntries(ctx context.Context, limit, offset int) ([]SEOEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+seoColumns+` FROM seo_entries ORDER BY path LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list seo entries: %w", err)
	}
	defer rows.Close()

	var entries []SEOEntry
	for rows.Next() {
		e, err := scanSEO(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertSEOEntry inserts or replaces an entry keyed by path.
func (s *Store) UpsertSEOEntry(ctx context.Context, e SEOEntry) (SEOEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StatusCode == 0 {
		e.StatusCode = 200
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO seo_entries (id, path, title, description, redirect_to, status_code)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (path) DO UPDATE SET
		   title = EXCLUDED.title,
		   description = EXCLUDED.description,
		   redirect_to = EXCLUDED.redirect_to,
		   status_code = EXCLUDED.status_code,
		   updated_at = now()
		 RETURNING `+seoColumns,
		e.ID, e.Path, e.Title, e.Description, e.RedirectTo, e.StatusCode)
	out, err := scanSEO(row)
	if err != nil {
		return SEOEntry{}, fmt.Errorf("upsert seo entry: %w", err)
	}
	return out, nil
}

// DeleteSEOEntry removes an entry by id.
func (s *Store) DeleteSEOEntry(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM seo_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete seo entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
