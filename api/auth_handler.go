package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type signInFunc func(email, password string) (string, auth.Identity, error)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	signIn    signInFunc
}

func newAuthHandler(authenticator *auth.Authenticator) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	h := authHandler{
		responder: NewResponder(logger),
		logger:    logger,
	}
	if authenticator != nil {
		h.signIn = authenticator.SignIn
	}
	return h
}

// login exchanges the admin credentials for a bearer token
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.signIn == nil {
			h.responder.WriteError(w, errs.NewServiceConfigError("admin sign-in", "ADMIN_EMAIL/JWT_SECRET"))
			return
		}

		var req LoginRequest
		if err := decodeJSON(w, r, "login", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		token, identity, err := h.signIn(req.Email, req.Password)
		if err != nil {
			h.logger.Warn().Str("email", req.Email).Str("remote_addr", clientIP(r)).Msg("Failed sign-in")
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("email", identity.Email).Msg("Admin signed in")
		h.responder.WriteJSON(w, LoginResponse{
			Token:     token,
			Email:     identity.Email,
			ExpiresAt: identity.ExpiresAt,
		})
	}
}

// me returns the identity carried by the bearer token
// @Summary Current admin
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Identity
// @Failure 401 {object} ErrorResponse "Missing or invalid token"
// @Router /auth/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := ctxGetIdentity(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteJSON(w, identity)
	}
}
