package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends transactional mail synchronously through the Mailgun API.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

func (m *Mailgun) SendWelcome(ctx context.Context, to Recipient, verificationURL string) error {
	subject, text := welcomeBody(to, verificationURL)
	return m.send(ctx, to.Email, subject, text)
}

func (m *Mailgun) SendPasswordReset(ctx context.Context, to Recipient, resetURL string, expiresIn time.Duration) error {
	subject, text := passwordResetBody(to, resetURL, expiresIn)
	return m.send(ctx, to.Email, subject, text)
}

// Send dispatches a raw message; the email worker uses it for queued jobs.
func (m *Mailgun) Send(ctx context.Context, to, subject, text string) error {
	return m.send(ctx, to, subject, text)
}

func (m *Mailgun) send(ctx context.Context, to, subject, text string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

var _ Mailer = (*Mailgun)(nil)
