package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetStaffByEmail fetches an active staff account by email.
func (s *Store) GetStaffByEmail(ctx context.Context, email string) (StaffUser, error) {
	var u StaffUser
	err := s.Pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, active, created_at
		 FROM staff_users WHERE lower(email) = lower($1) AND active = TRUE`,
		strings.TrimSpace(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StaffUser{}, ErrNotFound
	}
	if err != nil {
		return StaffUser{}, fmt.Errorf("get staff by email: %w", err)
	}
	return u, nil
}

// CreateStaff inserts a staff account. Used by the seeder.
func (s *Store) CreateStaff(ctx context.Context, email, passwordHash, displayName string) (StaffUser, error) {
	var u StaffUser
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO staff_users (id, email, password_hash, display_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, email, password_hash, display_name, active, created_at`,
		uuid.NewString(), strings.ToLower(strings.TrimSpace(email)), passwordHash, displayName).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Active, &u.CreatedAt)
	if err != nil {
		return StaffUser{}, fmt.Errorf("create staff: %w", err)
	}
	return u, nil
}
