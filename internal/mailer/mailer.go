// Package mailer delivers parent notifications. It renders failure alerts and
// report cards and hands them to a transport.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("mailer: recipient address is required")

// Message is one rendered email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate() error {
	if strings.TrimSpace(m.ToEmail) == "" {
		return ErrNoRecipient
	}
	return nil
}
