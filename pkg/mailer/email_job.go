package mailer

import (
	"errors"
	"strings"

	"github.com/oksasatya/go-recipe-api/pkg/mailer/templates"
)

// TemplateWelcome is sent after a user registers.
const TemplateWelcome = "welcome"

var (
	ErrNoRecipient = errors.New("email job has no recipient")
	ErrNoContent   = errors.New("email job has neither template nor subject")
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered with Data) or Subject plus Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (j EmailJob) Validate() error {
	if strings.TrimSpace(j.To) == "" {
		return ErrNoRecipient
	}
	if j.Template == "" && j.Subject == "" {
		return ErrNoContent
	}
	return nil
}

// Kind names the job on the wire, e.g. "email.welcome".
func (j EmailJob) Kind() string {
	if j.Template == "" {
		return "email.raw"
	}
	return "email." + j.Template
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Tag     string
}

// Render produces the message for the job, expanding its template when set.
func (j EmailJob) Render() (Message, error) {
	if err := j.Validate(); err != nil {
		return Message{}, err
	}
	if j.Template == "" {
		return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML}, nil
	}
	subject, text, html, err := templates.Render(j.Template, j.Data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: j.To, Subject: subject, Text: text, HTML: html, Tag: j.Template}, nil
}
