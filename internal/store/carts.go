package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cartColumns = `id, token, contact_name, contact_email, contact_phone, created_at, updated_at`

func scanCart(row pgx.Row) (Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.Token, &c.ContactName, &c.ContactEmail, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCartByToken fetches a cart by its cookie token.
func (s *Store) GetCartByToken(ctx context.Context, token string) (Cart, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE token = $1`, token)
	c, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("get cart by token: %w", err)
	}
	return c, nil
}

// GetCart fetches a cart by id.
func (s *Store) GetCart(ctx context.Context, id string) (Cart, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	c, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

// CreateCart inserts a new anonymous cart and returns it.
func (s *Store) CreateCart(ctx context.Context, token string) (Cart, error) {
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO carts (id, token) VALUES ($1, $2) RETURNING `+cartColumns,
		uuid.NewString(), token)
	c, err := scanCart(row)
	if err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

// UpdateCartContact sets the contact block on a cart.
func (s *Store) UpdateCartContact(ctx context.Context, cartID string, name, email, phone *string) (Cart, error) {
	row := s.Pool.QueryRow(ctx,
		`UPDATE carts SET contact_name = $2, contact_email = $3, contact_phone = $4, updated_at = now()
		 WHERE id = $1 RETURNING `+cartColumns,
		cartID, name, email, phone)
	c, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("update cart contact: %w", err)
	}
	return c, nil
}

// TouchCart bumps the cart updated_at timestamp inside a transaction.
func TouchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
