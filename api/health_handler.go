package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          *gorm.DB
	startupTime time.Time
}

func newHealthHandler(db *gorm.DB, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// healthz reports uptime and whether the database answers a ping
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h healthHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:        "ok",
			Database:      "ok",
			StartedAt:     h.startupTime.UTC(),
			UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		}

		if err := h.ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("Database ping failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			h.responder.WriteJSONStatus(w, http.StatusServiceUnavailable, resp)
			return
		}
		h.responder.WriteJSON(w, resp)
	}
}

func (h healthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
