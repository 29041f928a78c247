package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	version string
	now     func() time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler reporting version.
func NewHealthHandler(version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{version: version, now: time.Now, logger: logger}
}

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Version   string  `json:"version"`
}

// HealthCheck responds with the liveness status and the current unix time.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: float64(h.now().UnixNano()) / 1e9,
		Version:   h.version,
	})
}
