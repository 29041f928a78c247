package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// maxSyntheticTrades caps the number of generated trades per request.
const maxSyntheticTrades = 20

// DefaultInterval is the candle interval used for unknown interval names.
const DefaultInterval = "1h"

// intervalSteps maps candle interval names to their step size.
var intervalSteps = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// IntervalStep returns the step for interval, falling back to one hour.
func IntervalStep(interval string) time.Duration {
	if d, ok := intervalSteps[interval]; ok {
		return d
	}
	return intervalSteps[DefaultInterval]
}

// SyntheticTrades is a domain.TradeSource that fabricates a fixed tape of
// trades spaced 30 seconds apart. It stands in for the subgraph; BeforeTS is
// accepted and ignored.
type SyntheticTrades struct {
	now func() time.Time
}

// NewSyntheticTrades creates a SyntheticTrades source. A nil clock uses
// time.Now.
func NewSyntheticTrades(now func() time.Time) *SyntheticTrades {
	if now == nil {
		now = time.Now
	}
	return &SyntheticTrades{now: now}
}

// RecentTrades returns min(q.Limit, 20) trades, newest first.
func (s *SyntheticTrades) RecentTrades(_ context.Context, q domain.TradeQuery) ([]domain.Trade, error) {
	n := min(max(q.Limit, 0), maxSyntheticTrades)
	now := unixSeconds(s.now())
	txHash := "0x" + strings.Repeat("a", 64)

	trades := make([]domain.Trade, n)
	for i := range trades {
		trades[i] = domain.Trade{
			MarketID:  q.MarketID,
			Trader:    "0xabc123...",
			IsBuyYes:  true,
			USDCIn:    5000.0,
			SharesOut: 7320.5,
			PriceBps:  6840,
			TxHash:    txHash,
			Timestamp: now - float64(i*30),
		}
	}
	return trades, nil
}

// TradeService serves trades and price history for a market.
type TradeService struct {
	trades domain.TradeSource
	now    func() time.Time
	logger *slog.Logger
}

// NewTradeService creates a TradeService. A nil source uses SyntheticTrades.
func NewTradeService(trades domain.TradeSource, now func() time.Time, logger *slog.Logger) *TradeService {
	if now == nil {
		now = time.Now
	}
	if trades == nil {
		trades = NewSyntheticTrades(now)
	}
	return &TradeService{trades: trades, now: now, logger: logger}
}

// Trades returns the recent trades of a market. Results are not cached.
func (s *TradeService) Trades(ctx context.Context, q domain.TradeQuery) ([]domain.Trade, error) {
	trades, err := s.trades.RecentTrades(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("trade_service: trades for market %d: %w", q.MarketID, err)
	}
	if trades == nil {
		trades = []domain.Trade{}
	}
	return trades, nil
}

// PriceHistory generates limit OHLCV candles, oldest first, ending one step
// before now. The random walk is seeded by marketID on every call, so the
// prices and volumes are identical across calls; only the times move with
// the clock.
func (s *TradeService) PriceHistory(_ context.Context, marketID int64, interval string, limit int) domain.PriceHistory {
	step := int64(IntervalStep(interval) / time.Second)
	now := s.now().Unix()

	return domain.PriceHistory{
		MarketID: marketID,
		Interval: interval,
		Candles:  GenerateCandles(marketID, now, step, limit),
	}
}

// GenerateCandles walks a seeded random price from 5000 bps. Each candle
// draws, in order: the close delta in [-200,200], the high wick in [0,100],
// the low wick in [0,100] and the volume in [10000,200000).
func GenerateCandles(marketID, now, step int64, limit int) []domain.Candle {
	rng := rand.New(rand.NewPCG(uint64(marketID), 0))

	price := 5000
	candles := make([]domain.Candle, 0, max(limit, 0))
	for i := limit; i > 0; i-- {
		delta := rng.IntN(401) - 200
		open := price
		closePrice := min(max(price+delta, 100), 9900)
		high := max(open, closePrice) + rng.IntN(101)
		low := min(open, closePrice) - rng.IntN(101)
		volume := 10_000 + rng.Float64()*190_000

		candles = append(candles, domain.Candle{
			Time:   now - int64(i)*step,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
		price = closePrice
	}
	return candles
}

// unixSeconds returns t as fractional unix seconds.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
