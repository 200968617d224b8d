package services

import (
	"context"
	"fmt"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageCreator is the slice of the Twilio REST API used for alerts.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSNotifier texts the site owner through Twilio.
type SMSNotifier struct {
	api  MessageCreator
	from string
	to   string
}

// NewSMSNotifier returns nil when Twilio is not configured.
func NewSMSNotifier(accountSID, authToken, from, to string) *SMSNotifier {
	if accountSID == "" || authToken == "" || from == "" || to == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewSMSNotifierWithAPI(client.Api, from, to)
}

func NewSMSNotifierWithAPI(api MessageCreator, from, to string) *SMSNotifier {
	return &SMSNotifier{api: api, from: from, to: to}
}

// Notify sends body as a text message.
func (n *SMSNotifier) Notify(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrSMSDelivery, err)
	}
	if resp != nil && resp.Sid != nil {
		log.Info().Str("sid", *resp.Sid).Msg("Sent SMS alert")
	}
	return nil
}
