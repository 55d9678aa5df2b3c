package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridConfig configures the SendGrid transport.
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
	AppName  string
	Host     string
}

// SendGridMailer posts messages to the SendGrid v3 mail API.
type SendGridMailer struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     zerolog.Logger
	api        func(request rest.Request) (*rest.Response, error)
}

var _ Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer constructs a SendGrid-backed mailer.
func NewSendGridMailer(cfg SendGridConfig, logger zerolog.Logger) (*SendGridMailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key must not be empty")
	}

	host := cfg.Host
	if host == "" {
		host = sendgridHost
	}

	prefix := ""
	if cfg.AppName != "" {
		prefix = "[" + cfg.AppName + "] "
	}

	return &SendGridMailer{
		key:        cfg.APIKey,
		host:       host,
		from:       sgmail.NewEmail(cfg.FromName, cfg.From),
		subjPrefix: prefix,
		logger:     logger.With().Str("component", "sendgrid_mailer").Logger(),
		api:        sendgrid.API,
	}, nil
}

// Send delivers msg and reports non-2xx responses as errors.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := m.api(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.logger.Warn().Int("status", res.StatusCode).Str("body", res.Body).Str("to", msg.ToEmail).Msg("sendgrid rejected message")
		return fmt.Errorf("sendgrid responded with status %d", res.StatusCode)
	}

	m.logger.Debug().Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("message delivered")
	return nil
}

func (m *SendGridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)

	if msg.Text != "" {
		mail.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		mail.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	return mail
}
