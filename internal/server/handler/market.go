package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/service"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	ListMarkets(ctx context.Context, p service.ListMarketsParams) (domain.MarketPage, error)
	HotMarkets(ctx context.Context, limit int) ([]domain.Market, error)
	GetMarket(ctx context.Context, id int64) (domain.Market, error)
	Search(ctx context.Context, q string) (domain.SearchResult, error)
	Categories() []domain.CategorySummary
	ResolutionStatus(ctx context.Context, id int64) domain.ResolutionStatus
}

// MarketHandler serves market-related HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// ListMarkets returns one filtered, sorted page of markets.
// GET /markets?category=&sort_by=volume_24h&page=1&page_size=20&search=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := queryMinInt(q, "page", 1, 1)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	pageSize, err := queryInt(q, "page_size", 20, 1, 100)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	result, err := h.markets.ListMarkets(r.Context(), service.ListMarketsParams{
		Category: q.Get("category"),
		SortBy:   queryString(q, "sort_by", service.SortVolume24h),
		Page:     page,
		PageSize: pageSize,
		Search:   q.Get("search"),
	})
	if err != nil {
		writeInternal(w, r, h.logger, "handler: list markets failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HotMarkets returns the markets with the highest hot score.
// GET /markets/hot?limit=5
func (h *MarketHandler) HotMarkets(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 5, 1, 20)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	markets, err := h.markets.HotMarkets(r.Context(), limit)
	if err != nil {
		writeInternal(w, r, h.logger, "handler: hot markets failed", err)
		return
	}

	writeJSON(w, http.StatusOK, markets)
}

// GetMarket returns a single market by its ID.
// GET /markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeInvalid(w, err)
		return
	}

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Market %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.Int64("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// ResolutionStatus returns the oracle state of a market.
// GET /markets/{id}/resolution-status
func (h *MarketHandler) ResolutionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeInvalid(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.markets.ResolutionStatus(r.Context(), id))
}

// Search matches markets by question or tags.
// GET /search?q=
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("q") {
		writeInvalid(w, invalidf("q: field required"))
		return
	}
	term := q.Get("q")
	if len([]rune(term)) < 2 {
		writeInvalid(w, invalidf("q: ensure this value has at least 2 characters"))
		return
	}

	result, err := h.markets.Search(r.Context(), term)
	if err != nil {
		writeInternal(w, r, h.logger, "handler: search failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Categories returns the category directory.
// GET /categories
func (h *MarketHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.markets.Categories())
}
