package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/service"
)

// UserService defines what the user handler needs from the service layer.
type UserService interface {
	Leaderboard(ctx context.Context, metric, timeframe string, limit int) ([]domain.LeaderboardEntry, error)
	Profile(ctx context.Context, address string) domain.UserProfile
	Positions(ctx context.Context, address, status string) domain.UserPositions
}

// UserHandler serves leaderboard and per-address endpoints.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Leaderboard returns the top traders.
// GET /leaderboard?metric=total_pnl&limit=50&timeframe=alltime
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit", 50, 1, 200)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	entries, err := h.users.Leaderboard(r.Context(),
		queryString(q, "metric", service.DefaultLeaderboardMetric),
		queryString(q, "timeframe", service.DefaultLeaderboardTimeframe),
		limit,
	)
	if err != nil {
		writeInternal(w, r, h.logger, "handler: leaderboard failed", err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Profile returns a user's reputation summary.
// GET /users/{address}/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.users.Profile(r.Context(), pathParam(r, "address")))
}

// Positions returns a user's positions.
// GET /users/{address}/positions?status=open
func (h *UserHandler) Positions(w http.ResponseWriter, r *http.Request) {
	status := queryString(r.URL.Query(), "status", domain.PositionStatusOpen)
	writeJSON(w, http.StatusOK, h.users.Positions(r.Context(), pathParam(r, "address"), status))
}
