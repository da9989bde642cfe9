package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun delivers rendered messages through one reusable Mailgun client.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

// NewMailgun builds the sender. An empty apiBase keeps the US endpoint.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, Sender: sender}
}

// Send delivers msg and returns the id Mailgun assigned to it.
func (m *Mailgun) Send(ctx context.Context, msg Message) (string, error) {
	email := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		email.SetHtml(msg.HTML)
	}
	if msg.Tag != "" {
		if err := email.AddTag(msg.Tag); err != nil {
			return "", err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, id, err := m.client.Send(c, email)
	return id, err
}
