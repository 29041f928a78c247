package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// FeedService defines what the feed handler needs from the service layer.
type FeedService interface {
	Activity(ctx context.Context, limit int) ([]domain.Activity, error)
}

// FeedHandler serves the activity ticker.
type FeedHandler struct {
	feed   FeedService
	logger *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feed FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

// Activity returns the latest whale trades.
// GET /feed/activity?limit=20
func (h *FeedHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 20, 1, 100)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	items, err := h.feed.Activity(r.Context(), limit)
	if err != nil {
		writeInternal(w, r, h.logger, "handler: activity feed failed", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
