package mailer

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogMailer writes messages to the structured log instead of sending them.
// It keeps the delivered messages so operators and tests can inspect them.
type LogMailer struct {
	logger zerolog.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer constructs a mailer that only logs.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

// Send records msg and logs its envelope.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info().
		Str("to", msg.ToEmail).
		Str("to_name", msg.ToName).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("email delivery logged")

	return nil
}

// Sent returns a copy of every message logged so far.
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
