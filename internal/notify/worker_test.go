package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/events"
)

func TestHandleDomainEventSendsOpsEmail(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &Worker{Email: mail, OpsEmail: "ops@example.com", Logger: zerolog.Nop()}

	payload, err := json.Marshal(EventTask{
		EventID: "evt-1",
		Topic:   events.TopicBookingAdded,
		Payload: json.RawMessage(`{"cart_id":"c1","trip_slug":"nile-cruise"}`),
	})
	require.NoError(t, err)

	err = worker.HandleDomainEvent(context.Background(), asynq.NewTask(TypeDomainEvent, payload))
	require.NoError(t, err)
	require.Equal(t, 1, mail.Count())
	require.Contains(t, mail.Sent[0].Subject, events.TopicBookingAdded)
}

func TestHandleDomainEventIgnoresUnroutedTopics(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &Worker{Email: mail, OpsEmail: "ops@example.com", Logger: zerolog.Nop()}

	payload, err := json.Marshal(EventTask{EventID: "evt-2", Topic: events.TopicBookingUpdated})
	require.NoError(t, err)

	err = worker.HandleDomainEvent(context.Background(), asynq.NewTask(TypeDomainEvent, payload))
	require.NoError(t, err)
	require.Equal(t, 0, mail.Count())
}

func TestHandleDomainEventRejectsBadPayload(t *testing.T) {
	worker := &Worker{Logger: zerolog.Nop()}
	err := worker.HandleDomainEvent(context.Background(), asynq.NewTask(TypeDomainEvent, []byte("{bad")))
	require.Error(t, err)
}
