package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the pgx pool with typed queries for the travel schema.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store around an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Connect opens a pgx pool against the given database URL.
func Connect(ctx context.Context, databaseURL string, tracer pgx.QueryTracer) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if tracer != nil {
		cfg.ConnConfig.Tracer = tracer
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

// WithTx runs fn inside a transaction, rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if s == nil || s.Pool == nil {
		return errors.New("store: pool not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PingDB probes the database for readiness.
func (s *Store) PingDB(ctx context.Context, timeout time.Duration) error {
	if s == nil || s.Pool == nil {
		return errors.New("store: pool not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Pool.Ping(ctx)
}
