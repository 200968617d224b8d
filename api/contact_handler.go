package api

import (
	"context"
	"net/http"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactSubmitter interface {
	Submit(ctx context.Context, m services.ContactMessage) error
}

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contact   contactSubmitter
	metrics   *httpMetrics
}

func newContactHandler(contact contactSubmitter, metrics *httpMetrics) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()
	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		contact:   contact,
		metrics:   metrics,
	}
}

// sendMessage forwards a contact-form message to the site owner
// @Summary Send contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body services.ContactMessage true "Message"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid field"
// @Failure 429 {object} ErrorResponse "Too many messages"
// @Failure 502 {object} ErrorResponse "Email provider refused the message"
// @Router /contact [post]
func (h contactHandler) sendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.contact == nil {
			h.responder.WriteError(w, errs.NewServiceConfigError("contact form", "RESEND_API_KEY"))
			return
		}

		var msg services.ContactMessage
		if err := decodeJSON(w, r, "contact", &msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		err := h.contact.Submit(r.Context(), msg)
		h.metrics.contactMessages.WithLabelValues(result(err)).Inc()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "Email sent successfully",
		})
	}
}
