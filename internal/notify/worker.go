package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/events"
)

// Worker consumes domain event tasks and sends operator notifications.
type Worker struct {
	Email    common.EmailSender
	OpsEmail string
	Logger   zerolog.Logger
}

// Mux returns an asynq mux with the worker's handlers registered.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDomainEvent, w.HandleDomainEvent)
	return mux
}

// HandleDomainEvent processes a single queued domain event.
func (w *Worker) HandleDomainEvent(ctx context.Context, task *asynq.Task) error {
	var evt EventTask
	if err := json.Unmarshal(task.Payload(), &evt); err != nil {
		return fmt.Errorf("decode event task: %w", err)
	}

	w.Logger.Info().
		Str("event_id", evt.EventID).
		Str("topic", evt.Topic).
		Msg("processing domain event")

	switch evt.Topic {
	case events.TopicBookingAdded, events.TopicBookingRemoved, events.TopicRewardApplied, events.TopicReviewSubmitted:
		return w.notifyOps(ctx, evt)
	default:
		// other topics are recorded in the outbox only
		return nil
	}
}

func (w *Worker) notifyOps(ctx context.Context, evt EventTask) error {
	if w.Email == nil || w.OpsEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("[travel] %s", evt.Topic)
	body := fmt.Sprintf("event %s\n%s\n", evt.EventID, string(evt.Payload))
	if err := w.Email.Send(ctx, w.OpsEmail, subject, body); err != nil {
		return fmt.Errorf("send ops email: %w", err)
	}
	return nil
}
