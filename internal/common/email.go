package common

import (
	"context"
	"sync"
)

// EmailSender delivers transactional mail. The worker binary wires
// NopEmailSender until an SMTP sender is configured; tests use InMemoryEmail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// InMemoryEmail records sent messages for assertions.
type InMemoryEmail struct {
	mu   sync.Mutex
	Sent []Email
}

func (m *InMemoryEmail) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Email{To: to, Subject: subject, Body: body})
	return nil
}

func (m *InMemoryEmail) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// NopEmailSender drops mail. Used when SMTP is not configured.
type NopEmailSender struct{}

func (NopEmailSender) Send(context.Context, string, string, string) error { return nil }
