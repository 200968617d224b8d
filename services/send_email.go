package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Email is a single outgoing message.
type Email struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer sends email through the Resend API.
type Mailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewMailer builds a Resend mailer.
//   - apiKey: RESEND_API_KEY
//   - from: RESEND_FROM_EMAIL, e.g. "Portfolio <hello@example.com>"
func NewMailer(apiKey, from string) (*Mailer, error) {
	if apiKey == "" {
		return nil, errs.NewServiceConfigError("email", "RESEND_API_KEY")
	}
	if from == "" {
		return nil, errs.NewServiceConfigError("email", "RESEND_FROM_EMAIL")
	}
	return &Mailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log.With().Str("component", "mailer").Logger(),
	}, nil
}

// WithEndpoint points the mailer at another Resend-compatible endpoint.
func (m *Mailer) WithEndpoint(endpoint string) *Mailer {
	m.endpoint = endpoint
	return m
}

// Send delivers email and returns the provider's message id.
func (m *Mailer) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", errs.NewMissingRequiredFieldError("to")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		ReplyTo: email.ReplyTo,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request to Resend API: %w", errs.ErrEmailDelivery, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read Resend API response: %w", errs.ErrEmailDelivery, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return "", fmt.Errorf("%w: resend API error (status %d): %s", errs.ErrEmailDelivery, resp.StatusCode, errorResp.Message)
		}
		return "", fmt.Errorf("%w: resend API error (status %d): %s", errs.ErrEmailDelivery, resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
		return "", nil
	}
	m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	return emailResponse.ID, nil
}
