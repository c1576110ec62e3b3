package notify

import (
	"context"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailConfig configures the SendGrid email sink. The sink is only built
// when Enabled reports true (API key, sender and at least one recipient
// set); cmd/gamayund skips it otherwise. Tags
// also double as the TOML keys of the application config's sendgrid_config
// table; internal/env.Load recurses into this struct by field kind, so no
// tag is needed on the embedding field itself.
type EmailConfig struct {
	APIKey    string   `toml:"api_key" env:"GAMAYUN_SENDGRID_API_KEY"`
	FromEmail string   `toml:"from_email" env:"GAMAYUN_SENDGRID_FROM_EMAIL"`
	ToEmails  []string `toml:"to_emails" env:"GAMAYUN_SENDGRID_TO_EMAILS"`
}

// Enabled reports whether enough configuration is present to construct a
// working sink.
func (c EmailConfig) Enabled() bool {
	return c.APIKey != "" && c.FromEmail != "" && len(c.ToEmails) > 0
}

// EmailSink sends notifications as plain-text emails over the SendGrid v3
// mail-send HTTPS API.
type EmailSink struct {
	client *sendgrid.Client
	from   *mail.Email
	to     []*mail.Email
}

// NewEmailSink constructs an EmailSink. Callers should check cfg.Enabled()
// first; NewEmailSink does not validate the config itself.
func NewEmailSink(cfg EmailConfig) *EmailSink {
	to := make([]*mail.Email, 0, len(cfg.ToEmails))
	for _, addr := range cfg.ToEmails {
		to = append(to, mail.NewEmail("", addr))
	}

	return &EmailSink{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail("gamayun", cfg.FromEmail),
		to:     to,
	}
}

// Notify implements Sink by sending one email whose single personalization
// block lists every recipient, subject=title, plain-text body=body.
func (e *EmailSink) Notify(ctx context.Context, title, body string) {
	message := mail.NewV3Mail()
	message.SetFrom(e.from)
	message.Subject = title
	message.AddContent(mail.NewContent("text/plain", body))

	personalization := mail.NewPersonalization()
	personalization.AddTos(e.to...)
	message.AddPersonalizations(personalization)

	resp, err := e.client.Send(message)
	if err != nil {
		slog.ErrorContext(ctx, "sendgrid notification failed", "error", err)
		return
	}
	if resp.StatusCode >= 300 {
		slog.ErrorContext(ctx, "sendgrid notification rejected",
			"status_code", resp.StatusCode, "body", resp.Body)
	}
}
