package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/service"
)

// TradeService defines what the trade handler needs from the service layer.
type TradeService interface {
	Trades(ctx context.Context, q domain.TradeQuery) ([]domain.Trade, error)
	PriceHistory(ctx context.Context, marketID int64, interval string, limit int) domain.PriceHistory
}

// TradeHandler serves per-market trade and candle endpoints.
type TradeHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(trades TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, logger: logger}
}

// ListTrades returns the recent trades of a market.
// GET /markets/{id}/trades?limit=50&before_ts=
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeInvalid(w, err)
		return
	}
	q := r.URL.Query()
	limit, err := queryInt(q, "limit", 50, 1, 500)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	before, err := queryFloat(q, "before_ts")
	if err != nil {
		writeInvalid(w, err)
		return
	}

	trades, err := h.trades.Trades(r.Context(), domain.TradeQuery{
		MarketID: id,
		Limit:    limit,
		BeforeTS: before,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list trades failed",
			slog.Int64("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}

	writeJSON(w, http.StatusOK, trades)
}

// PriceHistory returns OHLCV candles for a market.
// GET /markets/{id}/price-history?interval=1h&limit=200
func (h *TradeHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeInvalid(w, err)
		return
	}
	q := r.URL.Query()
	limit, err := queryInt(q, "limit", 200, 1, 1000)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	interval := queryString(q, "interval", service.DefaultInterval)

	writeJSON(w, http.StatusOK, h.trades.PriceHistory(r.Context(), id, interval, limit))
}
