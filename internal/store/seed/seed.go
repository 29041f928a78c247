// Package seed provides the fixed in-memory datasets served by default: the
// seed market list and the leaderboard. Both are built once and never mutated.
package seed

import (
	"context"
	"fmt"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

func strPtr(s string) *string { return &s }

// Markets returns a fresh copy of the seed market list.
func Markets() []domain.Market {
	return []domain.Market{
		{
			MarketMeta: domain.MarketMeta{
				MarketID:        1,
				Question:        "Will the Fed cut rates by 50bps before June 2025?",
				Description:     "Resolves YES if the Federal Reserve announces a 50 basis point or greater rate cut before June 30, 2025. Resolution source: Fed official press releases.",
				Category:        domain.CategoryPolitics,
				ImageURL:        "https://images.unsplash.com/photo-1611974789855-9c2a0a7236a3?w=400",
				Tags:            []string{"fed", "rates", "macro", "finance"},
				SourceURL:       strPtr("https://federalreserve.gov"),
				ResolutionRules: "Resolves YES if FOMC minutes confirm ≥50bps cut before June 30 2025.",
			},
			MarketStats: domain.MarketStats{
				YesPriceBps:    6840,
				NoPriceBps:     3160,
				TotalVolumeUSD: 2_450_000.0,
				Volume24hUSD:   185_000.0,
				TotalLiquidity: 890_000.0,
				NumTraders:     1247,
			},
		},
		{
			MarketMeta: domain.MarketMeta{
				MarketID:        2,
				Question:        "Will Bitcoin exceed $150K before end of 2025?",
				Description:     "Resolves YES if BTC/USD spot price on Coinbase Pro crosses $150,000 at any point before Dec 31, 2025 23:59 UTC.",
				Category:        domain.CategoryCrypto,
				ImageURL:        "https://images.unsplash.com/photo-1518546305927-5a555bb7020d?w=400",
				Tags:            []string{"bitcoin", "btc", "crypto", "price"},
				SourceURL:       strPtr("https://coinbase.com"),
				ResolutionRules: "Resolves YES if BTC/USD on Coinbase Pro >= $150,000 before EOY 2025.",
			},
			MarketStats: domain.MarketStats{
				YesPriceBps:    4230,
				NoPriceBps:     5770,
				TotalVolumeUSD: 8_920_000.0,
				Volume24hUSD:   720_000.0,
				TotalLiquidity: 3_100_000.0,
				NumTraders:     5832,
			},
		},
		{
			MarketMeta: domain.MarketMeta{
				MarketID:        3,
				Question:        "Will the Kansas City Chiefs win Super Bowl LX?",
				Description:     "Resolves YES if the Kansas City Chiefs win Super Bowl LX (Feb 2026). Resolution: official NFL result.",
				Category:        domain.CategorySports,
				ImageURL:        "https://images.unsplash.com/photo-1566577739112-5180d4bf9390?w=400",
				Tags:            []string{"nfl", "superbowl", "chiefs", "sports"},
				SourceURL:       strPtr("https://nfl.com"),
				ResolutionRules: "Resolves YES if KC Chiefs are Super Bowl LX champions.",
			},
			MarketStats: domain.MarketStats{
				YesPriceBps:    3100,
				NoPriceBps:     6900,
				TotalVolumeUSD: 1_230_000.0,
				Volume24hUSD:   95_000.0,
				TotalLiquidity: 450_000.0,
				NumTraders:     892,
			},
		},
		{
			MarketMeta: domain.MarketMeta{
				MarketID:        4,
				Question:        "Will GPT-5 be released before Claude 4?",
				Description:     "Resolves YES if OpenAI officially releases GPT-5 to the public before Anthropic releases Claude 4 (successor to Claude 3). Based on official announcements.",
				Category:        domain.CategoryCulture,
				ImageURL:        "https://images.unsplash.com/photo-1677442135703-1787eea5ce01?w=400",
				Tags:            []string{"ai", "openai", "anthropic", "llm"},
				SourceURL:       strPtr("https://openai.com"),
				ResolutionRules: "Resolves YES if GPT-5 public release precedes Claude 4 public release.",
			},
			MarketStats: domain.MarketStats{
				YesPriceBps:    5500,
				NoPriceBps:     4500,
				TotalVolumeUSD: 680_000.0,
				Volume24hUSD:   48_000.0,
				TotalLiquidity: 220_000.0,
				NumTraders:     418,
			},
		},
	}
}

// Leaderboard returns a fresh copy of the seed leaderboard, already ranked.
func Leaderboard() []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{
		{Rank: 1, Address: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", DisplayName: strPtr("0xVitalik"), TotalPnL: 428_500.0, ROIPct: 312.4, AccuracyRate: 0.74, BeliefScore: 9820, NumPositions: 156},
		{Rank: 2, Address: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", DisplayName: strPtr("PredictorX"), TotalPnL: 287_200.0, ROIPct: 241.1, AccuracyRate: 0.71, BeliefScore: 8455, NumPositions: 203},
		{Rank: 3, Address: "0x1234567890AbcdEF1234567890aBcdef12345678", DisplayName: strPtr("WhaleSeer"), TotalPnL: 194_100.0, ROIPct: 188.7, AccuracyRate: 0.68, BeliefScore: 7210, NumPositions: 89},
	}
}

// MarketStore implements domain.MarketRepository over the seed list.
type MarketStore struct {
	markets []domain.Market
}

// NewMarketStore creates a MarketStore holding markets. A nil slice loads
// the default seed list.
func NewMarketStore(markets []domain.Market) *MarketStore {
	if markets == nil {
		markets = Markets()
	}
	return &MarketStore{markets: markets}
}

// List returns a copy of every market in seed order.
func (s *MarketStore) List(_ context.Context) ([]domain.Market, error) {
	out := make([]domain.Market, len(s.markets))
	copy(out, s.markets)
	return out, nil
}

// GetByID returns the market with the given id or domain.ErrNotFound.
func (s *MarketStore) GetByID(_ context.Context, id int64) (domain.Market, error) {
	for _, m := range s.markets {
		if m.MarketID == id {
			return m, nil
		}
	}
	return domain.Market{}, fmt.Errorf("seed: market %d: %w", id, domain.ErrNotFound)
}

// LeaderboardStore implements domain.LeaderboardRepository over the seed list.
type LeaderboardStore struct {
	entries []domain.LeaderboardEntry
}

// NewLeaderboardStore creates a LeaderboardStore. A nil slice loads the
// default seed leaderboard.
func NewLeaderboardStore(entries []domain.LeaderboardEntry) *LeaderboardStore {
	if entries == nil {
		entries = Leaderboard()
	}
	return &LeaderboardStore{entries: entries}
}

// Top returns the first limit entries in seed order.
func (s *LeaderboardStore) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit < 0 {
		limit = 0
	}
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]domain.LeaderboardEntry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

var (
	_ domain.MarketRepository      = (*MarketStore)(nil)
	_ domain.LeaderboardRepository = (*LeaderboardStore)(nil)
)
