package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// Sort keys accepted by ListMarkets. Anything else sorts by SortVolume24h.
const (
	SortVolume24h   = "volume_24h"
	SortTotalVolume = "total_volume"
	SortNumTraders  = "num_traders"
	SortYesPrice    = "yes_price"
)

// sortFields maps a sort key to the numeric field it orders by.
var sortFields = map[string]func(domain.Market) float64{
	SortVolume24h:   func(m domain.Market) float64 { return m.Volume24hUSD },
	SortTotalVolume: func(m domain.Market) float64 { return m.TotalVolumeUSD },
	SortNumTraders:  func(m domain.Market) float64 { return float64(m.NumTraders) },
	SortYesPrice:    func(m domain.Market) float64 { return float64(m.YesPriceBps) },
}

// ListMarketsParams are the listing filters. Page and PageSize are validated
// by the caller.
type ListMarketsParams struct {
	Category string
	SortBy   string
	Page     int
	PageSize int
	Search   string
}

func (p ListMarketsParams) cacheKey() string {
	return fmt.Sprintf("markets:%s:%s:%d:%d:%s", p.Category, p.SortBy, p.Page, p.PageSize, p.Search)
}

// MarketService serves market listings and lookups with cache-aside reads.
type MarketService struct {
	markets domain.MarketRepository
	cache   *cacheAside
	logger  *slog.Logger
}

// NewMarketService creates a MarketService.
func NewMarketService(markets domain.MarketRepository, cache domain.Cache, logger *slog.Logger) *MarketService {
	return &MarketService{
		markets: markets,
		cache:   newCacheAside(cache, logger),
		logger:  logger,
	}
}

// ListMarkets filters by category and search text, sorts descending by the
// selected field (stable) and returns one page.
func (s *MarketService) ListMarkets(ctx context.Context, p ListMarketsParams) (domain.MarketPage, error) {
	return cached(ctx, s.cache, p.cacheKey(), func(ctx context.Context) (domain.MarketPage, error) {
		all, err := s.markets.List(ctx)
		if err != nil {
			return domain.MarketPage{}, fmt.Errorf("market_service: list: %w", err)
		}

		filtered := make([]domain.Market, 0, len(all))
		for _, m := range all {
			if p.Category != "" && !m.Category.Matches(p.Category) {
				continue
			}
			if p.Search != "" && !m.MatchesQuery(p.Search) {
				continue
			}
			filtered = append(filtered, m)
		}

		field, ok := sortFields[p.SortBy]
		if !ok {
			field = sortFields[SortVolume24h]
		}
		slices.SortStableFunc(filtered, func(a, b domain.Market) int {
			return cmp.Compare(field(b), field(a))
		})

		return domain.MarketPage{
			Markets:    paginate(filtered, p.Page, p.PageSize),
			TotalCount: len(filtered),
			Page:       p.Page,
			PageSize:   p.PageSize,
		}, nil
	})
}

// paginate returns items[(page-1)*size : page*size], clipped, never nil.
func paginate(items []domain.Market, page, size int) []domain.Market {
	if page < 1 || size < 1 {
		return []domain.Market{}
	}
	pages := len(items) / size
	if len(items)%size != 0 {
		pages++
	}
	if page > pages {
		return []domain.Market{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	out := make([]domain.Market, end-start)
	copy(out, items[start:end])
	return out
}

// HotScore is the 24h volume weighted by the distance of the YES price from
// the 50% midpoint.
func HotScore(m domain.Market) float64 {
	return m.Volume24hUSD * math.Abs(float64(m.YesPriceBps-5000)) / 5000
}

// HotMarkets returns the top limit markets by HotScore.
func (s *MarketService) HotMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	key := "hot:" + strconv.Itoa(limit)
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]domain.Market, error) {
		all, err := s.markets.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("market_service: hot: %w", err)
		}
		slices.SortStableFunc(all, func(a, b domain.Market) int {
			return cmp.Compare(HotScore(b), HotScore(a))
		})
		if limit < len(all) {
			all = all[:max(limit, 0)]
		}
		return all, nil
	})
}

// GetMarket returns a single market. Unknown ids yield an error wrapping
// domain.ErrNotFound.
func (s *MarketService) GetMarket(ctx context.Context, id int64) (domain.Market, error) {
	key := "market:" + strconv.FormatInt(id, 10)
	return cached(ctx, s.cache, key, func(ctx context.Context) (domain.Market, error) {
		m, err := s.markets.GetByID(ctx, id)
		if err != nil {
			return domain.Market{}, fmt.Errorf("market_service: get market %d: %w", id, err)
		}
		return m, nil
	})
}

// Search returns every market whose question or tags contain q.
func (s *MarketService) Search(ctx context.Context, q string) (domain.SearchResult, error) {
	all, err := s.markets.List(ctx)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("market_service: search: %w", err)
	}
	results := make([]domain.Market, 0, len(all))
	for _, m := range all {
		if m.MatchesQuery(q) {
			results = append(results, m)
		}
	}
	return domain.SearchResult{Query: q, Results: results, Count: len(results)}, nil
}

// Categories returns the category directory with its fixed counts.
func (s *MarketService) Categories() []domain.CategorySummary {
	return []domain.CategorySummary{
		{ID: domain.CategoryPolitics, Label: "Politics", Icon: "🏛️", MarketCount: 24, TotalVolume: 12_500_000},
		{ID: domain.CategoryCrypto, Label: "Crypto", Icon: "₿", MarketCount: 41, TotalVolume: 48_200_000},
		{ID: domain.CategorySports, Label: "Sports", Icon: "🏆", MarketCount: 18, TotalVolume: 8_900_000},
		{ID: domain.CategoryCulture, Label: "Culture", Icon: "🎭", MarketCount: 12, TotalVolume: 3_100_000},
	}
}

// ResolutionStatus reports the oracle state of a market. No oracle is wired
// yet, so every market is pending with no dispute.
func (s *MarketService) ResolutionStatus(_ context.Context, id int64) domain.ResolutionStatus {
	return domain.ResolutionStatus{
		MarketID:        id,
		OracleStatus:    "PENDING",
		TruthBondAmount: 500,
	}
}
