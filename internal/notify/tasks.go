package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/niledreams/backend-travel/internal/store"
)

// TypeDomainEvent is the asynq task type carrying a persisted domain event.
const TypeDomainEvent = "notify:domain_event"

// EventTask is the payload enqueued for every emitted domain event.
type EventTask struct {
	EventID string          `json:"event_id"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Scheduler enqueues domain events onto the asynq queue. It implements
// events.Scheduler.
type Scheduler struct {
	Client *asynq.Client
}

// Schedule converts the event into an asynq task and enqueues it.
func (s Scheduler) Schedule(ctx context.Context, event store.DomainEvent) error {
	if s.Client == nil {
		return errors.New("notify: asynq client not configured")
	}
	payload, err := json.Marshal(EventTask{
		EventID: event.ID,
		Topic:   event.Topic,
		Payload: event.Payload,
	})
	if err != nil {
		return fmt.Errorf("notify: encode task: %w", err)
	}
	task := asynq.NewTask(TypeDomainEvent, payload, asynq.MaxRetry(5))
	if _, err := s.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("notify: enqueue: %w", err)
	}
	return nil
}
