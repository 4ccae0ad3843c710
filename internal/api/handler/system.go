package handler

import (
	"context"
	"log/slog"
	"net/http"

	"crypto-graves/internal/api/types"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) bool

// Ping calls f(ctx).
func (f PingerFunc) Ping(ctx context.Context) bool { return f(ctx) }

// SystemHandler serves the service banner and health checks.
type SystemHandler struct {
	base
	db      Pinger
	name    string
	version string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(db Pinger, name, version string, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		base:    base{logger: logger},
		db:      db,
		name:    name,
		version: version,
	}
}

// Root returns the service name and version.
// GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": h.name,
		"version": h.version,
	})
}

// Health reports database connectivity. An unreachable database yields 503.
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db.Ping(r.Context()) {
		h.respondWithJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", Database: "connected"})
		return
	}
	h.respondWithJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy", Database: "disconnected"})
}
