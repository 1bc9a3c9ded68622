// Package notify is the outbound notification gateway. Services hand a Message to a
// Notifier and move on; delivery happens on a worker and its failure never reaches them.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Message is one plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message synchronously through a provider.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier accepts messages for fire-and-forget delivery.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// LogSender is used when no mail provider is configured. It records that a message
// would have gone out, without its body (bodies may carry credentials).
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Warn().Str("to", to).Str("subject", subject).Msg("notify: no mail provider configured, message dropped")
	return nil
}
