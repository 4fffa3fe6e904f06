package health

import (
	"log/slog"
	"net/http"
	"time"

	database "github.com/aura-analytics/aura-backend/app/db"
	"github.com/aura-analytics/aura-backend/internal/api"
)

// HandlerImpl serves the liveness endpoint. It always answers 200; database
// connectivity is reported as a sub-status so a DB outage never fails the
// probe itself.
type HandlerImpl struct {
	db      *database.Manager
	logger  *slog.Logger
	mode    string
	version string
}

func NewHealthHandler(db *database.Manager, logger *slog.Logger, mode, version string) *HandlerImpl {
	return &HandlerImpl{
		db:      db,
		logger:  logger,
		mode:    mode,
		version: version,
	}
}

// Status handles GET /health.
func (h *HandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Health check: database unreachable", slog.Any("error", err))
		dbStatus = "disconnected"
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"message":     "Aura Backend API is running",
		"database":    dbStatus,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.mode,
		"version":     h.version,
	})
}
