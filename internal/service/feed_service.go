package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

const (
	feedRepeat        = 3
	feedQuestionRunes = 60
	feedTrader        = "0xaaaa…bbbb"
)

// FeedService builds the whale-watcher activity ticker.
type FeedService struct {
	markets domain.MarketRepository
	now     func() time.Time
}

// NewFeedService creates a FeedService. A nil clock uses time.Now.
func NewFeedService(markets domain.MarketRepository, now func() time.Time) *FeedService {
	if now == nil {
		now = time.Now
	}
	return &FeedService{markets: markets, now: now}
}

// Activity returns up to limit entries, newest first, cycling through the
// market list three times.
func (s *FeedService) Activity(ctx context.Context, limit int) ([]domain.Activity, error) {
	markets, err := s.markets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed_service: activity: %w", err)
	}

	now := unixSeconds(s.now())
	n := min(max(limit, 0), len(markets)*feedRepeat)
	out := make([]domain.Activity, 0, n)
	for i := range n {
		m := markets[i%len(markets)]
		direction := "NO"
		if i%2 == 0 {
			direction = "YES"
		}
		out = append(out, domain.Activity{
			Type:       "WHALE_TRADE",
			MarketID:   m.MarketID,
			Question:   truncateRunes(m.Question, feedQuestionRunes) + "…",
			Trader:     feedTrader,
			Direction:  direction,
			USDCAmount: 10_000 + float64(i)*7_500,
			PriceBps:   m.YesPriceBps,
			Timestamp:  now - float64(i*45),
		})
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
