package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/medrecords/pkg/api"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	responder
	db      Pinger
	version string
}

// NewHealthHandler creates a HealthHandler reporting version.
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger},
		db:        db,
		version:   version,
	}
}

// Health handles GET /api/v1/health. An unreachable database answers 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := api.HealthResponse{Status: "ok", Database: "ok", Version: h.version}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database ping failed", slog.Any("error", err))
		resp = api.HealthResponse{Status: "degraded", Database: "unavailable", Version: h.version}
		status = http.StatusServiceUnavailable
	}

	h.sendJSON(w, resp, status)
}
