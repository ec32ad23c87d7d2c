package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertEvent appends a domain event to the outbox table.
func (s *Store) InsertEvent(ctx context.Context, topic string, payload []byte) (DomainEvent, error) {
	var e DomainEvent
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (id, topic, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, topic, payload, created_at`,
		uuid.NewString(), topic, payload).
		Scan(&e.ID, &e.Topic, &e.Payload, &e.CreatedAt)
	if err != nil {
		return DomainEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}
