package domain

import (
	"context"
	"io"
)

// MarketRepository provides read access to markets.
type MarketRepository interface {
	List(ctx context.Context) ([]Market, error)
	GetByID(ctx context.Context, id int64) (Market, error)
}

// LeaderboardRepository provides the ranked trader list.
type LeaderboardRepository interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// MetadataStore persists pending market metadata durably.
type MetadataStore interface {
	SavePending(ctx context.Context, meta PendingMetadata) error
	GetPending(ctx context.Context, id string) (PendingMetadata, error)
}

// Pinner stores content addressed by a path with an IPFS pinning service.
type Pinner interface {
	Pin(ctx context.Context, path string, data io.Reader, contentType string) error
}

// TradeQuery selects trades for a market.
type TradeQuery struct {
	MarketID int64
	Limit    int
	BeforeTS *float64
}

// TradeSource returns the recent trades of a market.
type TradeSource interface {
	RecentTrades(ctx context.Context, q TradeQuery) ([]Trade, error)
}
