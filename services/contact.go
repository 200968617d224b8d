package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContactMessage is a submission from the site's contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks the required fields and the sender address.
func (m ContactMessage) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return errs.NewMissingRequiredFieldError("name")
	case strings.TrimSpace(m.Email) == "":
		return errs.NewMissingRequiredFieldError("email")
	case strings.TrimSpace(m.Message) == "":
		return errs.NewMissingRequiredFieldError("message")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return errs.NewInvalidFieldError("email", "not a valid address")
	}
	return nil
}

var contactTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: 'Inter', sans-serif; background-color: #f3f4f6; padding: 2rem; border-radius: 0.75rem; color: #111827;">
  <h2 style="font-size: 1.5rem; font-weight: 700; margin-bottom: 1.5rem; color: #1f2937;">New message from your website</h2>
  <div style="background-color: #ffffff; padding: 1.5rem; border-radius: 0.5rem; line-height: 1.6;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Message:</strong></p>
    <blockquote style="margin-top: 1rem; padding-left: 1rem; border-left: 4px solid #9ca3af; color: #374151;">
      {{range $i, $line := .Lines}}{{if $i}}<br />{{end}}{{$line}}{{end}}
    </blockquote>
  </div>
  <footer style="font-size: 0.75rem; margin-top: 2rem; color: #6b7280; border-top: 1px solid #e5e7eb; padding-top: 1rem;">Sent automatically from the contact form on {{.Site}}</footer>
</div>`))

// RenderContactEmail renders the notification body for a contact message.
// All user input is HTML-escaped; line breaks are kept.
func RenderContactEmail(m ContactMessage, site string) (string, error) {
	var buf bytes.Buffer
	err := contactTemplate.Execute(&buf, struct {
		Name, Email, Site string
		Lines             []string
	}{
		Name:  m.Name,
		Email: m.Email,
		Site:  site,
		Lines: strings.Split(strings.ReplaceAll(m.Message, "\r\n", "\n"), "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Notifier sends a short text alert to the site owner.
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

// ContactService forwards contact-form messages to the site owner.
type ContactService struct {
	sender EmailSender
	notify Notifier
	to     []string
	site   string
	logger zerolog.Logger
}

// NewContactService builds the contact pipeline. notify may be nil.
func NewContactService(sender EmailSender, notify Notifier, to []string, site string) *ContactService {
	return &ContactService{
		sender: sender,
		notify: notify,
		to:     to,
		site:   site,
		logger: log.With().Str("component", "contactService").Logger(),
	}
}

// Submit validates and emails the message. The SMS alert is best effort: a
// failure is logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, m ContactMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if len(s.to) == 0 {
		return errs.NewServiceConfigError("contact form", "CONTACT_EMAIL_TO")
	}

	html, err := RenderContactEmail(m, s.site)
	if err != nil {
		return err
	}

	if _, err := s.sender.Send(ctx, Email{
		To:      s.to,
		Subject: "Message from " + m.Name,
		HTML:    html,
		ReplyTo: m.Email,
	}); err != nil {
		return errs.NewEmailDeliveryError(err)
	}

	if s.notify != nil {
		body := fmt.Sprintf("New contact message from %s <%s>", m.Name, m.Email)
		if err := s.notify.Notify(ctx, body); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to send contact SMS alert")
		}
	}
	return nil
}
