package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/cache/memory"
	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/store/seed"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingRepo counts List and GetByID calls on the seed store.
type countingRepo struct {
	*seed.MarketStore
	lists atomic.Int32
	gets  atomic.Int32
}

func (r *countingRepo) List(ctx context.Context) ([]domain.Market, error) {
	r.lists.Add(1)
	return r.MarketStore.List(ctx)
}

func (r *countingRepo) GetByID(ctx context.Context, id int64) (domain.Market, error) {
	r.gets.Add(1)
	return r.MarketStore.GetByID(ctx, id)
}

func newTestMarketService(t *testing.T) (*MarketService, *countingRepo) {
	t.Helper()
	repo := &countingRepo{MarketStore: seed.NewMarketStore(nil)}
	cache := memory.New(memory.DefaultTTL)
	t.Cleanup(func() { _ = cache.Close() })
	return NewMarketService(repo, cache, discardLogger()), repo
}

func marketIDs(ms []domain.Market) []int64 {
	ids := make([]int64, len(ms))
	for i, m := range ms {
		ids[i] = m.MarketID
	}
	return ids
}

func TestListMarketsDefaultsSortByVolume24h(t *testing.T) {
	svc, _ := newTestMarketService(t)

	page, err := svc.ListMarkets(context.Background(), ListMarketsParams{SortBy: SortVolume24h, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3, 4}, marketIDs(page.Markets))
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestListMarketsCategoryIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestMarketService(t)

	page, err := svc.ListMarkets(context.Background(), ListMarketsParams{
		Category: "crypto", SortBy: SortNumTraders, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, page.Markets, 1)
	assert.Equal(t, int64(2), page.Markets[0].MarketID)
	assert.Equal(t, 5832, page.Markets[0].NumTraders)
	assert.Equal(t, 1, page.TotalCount)
}

func TestListMarketsSortKeys(t *testing.T) {
	svc, _ := newTestMarketService(t)
	ctx := context.Background()

	tests := []struct {
		sortBy string
		want   []int64
	}{
		{SortTotalVolume, []int64{2, 1, 3, 4}},
		{SortNumTraders, []int64{2, 1, 3, 4}},
		{SortYesPrice, []int64{1, 4, 2, 3}},
		{"bogus", []int64{2, 1, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			page, err := svc.ListMarkets(ctx, ListMarketsParams{SortBy: tt.sortBy, Page: 1, PageSize: 20})
			require.NoError(t, err)
			assert.Equal(t, tt.want, marketIDs(page.Markets))
		})
	}
}

func TestListMarketsSearchMatchesTagsString(t *testing.T) {
	svc, _ := newTestMarketService(t)
	ctx := context.Background()

	page, err := svc.ListMarkets(ctx, ListMarketsParams{Search: "'rates'", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, marketIDs(page.Markets))

	page, err = svc.ListMarkets(ctx, ListMarketsParams{Search: "BITCOIN", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, marketIDs(page.Markets))
}

func TestListMarketsPagination(t *testing.T) {
	svc, _ := newTestMarketService(t)
	ctx := context.Background()

	page, err := svc.ListMarkets(ctx, ListMarketsParams{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, marketIDs(page.Markets))
	assert.Equal(t, 4, page.TotalCount)

	page, err = svc.ListMarkets(ctx, ListMarketsParams{Page: 5, PageSize: 3})
	require.NoError(t, err)
	assert.NotNil(t, page.Markets)
	assert.Empty(t, page.Markets)
	assert.Equal(t, 4, page.TotalCount)

	// (page-1)*size wraps to 0 in int arithmetic for this page.
	page, err = svc.ListMarkets(ctx, ListMarketsParams{Page: 1<<58 + 1, PageSize: 64})
	require.NoError(t, err)
	assert.Empty(t, page.Markets)
	assert.Equal(t, 4, page.TotalCount)
}

func TestPaginateFarPages(t *testing.T) {
	items := seed.Markets()
	assert.Len(t, paginate(items, 1, 64), 4)
	assert.Empty(t, paginate(items, 2, 64))
	assert.Empty(t, paginate(items, math.MaxInt, math.MaxInt))
	assert.Equal(t, []int64{3, 4}, marketIDs(paginate(items, 2, 2)))
}

func TestListMarketsSortIsStable(t *testing.T) {
	markets := seed.Markets()
	for i := range markets {
		markets[i].NumTraders = 100
	}
	cache := memory.New(memory.DefaultTTL)
	svc := NewMarketService(seed.NewMarketStore(markets), cache, discardLogger())

	page, err := svc.ListMarkets(context.Background(), ListMarketsParams{SortBy: SortNumTraders, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, marketIDs(page.Markets))
}

func TestListMarketsCachesByParams(t *testing.T) {
	svc, repo := newTestMarketService(t)
	ctx := context.Background()
	p := ListMarketsParams{SortBy: SortVolume24h, Page: 1, PageSize: 20}

	first, err := svc.ListMarkets(ctx, p)
	require.NoError(t, err)
	second, err := svc.ListMarkets(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.lists.Load())

	p.PageSize = 10
	_, err = svc.ListMarkets(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.lists.Load())
}

func TestListMarketsCollapsesConcurrentMisses(t *testing.T) {
	svc, _ := newTestMarketService(t)
	ctx := context.Background()
	p := ListMarketsParams{SortBy: SortVolume24h, Page: 1, PageSize: 20}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := svc.ListMarkets(ctx, p)
			assert.NoError(t, err)
			assert.Len(t, page.Markets, 4)
		}()
	}
	wg.Wait()
}

// ctxRepo fails List when its context is already done, like a database
// driver would.
type ctxRepo struct {
	domain.MarketRepository
}

func (r ctxRepo) List(ctx context.Context) ([]domain.Market, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.MarketRepository.List(ctx)
}

func TestListMarketsLoadOutlivesCallerCancel(t *testing.T) {
	repo := ctxRepo{MarketRepository: seed.NewMarketStore(nil)}
	svc := NewMarketService(repo, memory.New(memory.DefaultTTL), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := svc.ListMarkets(ctx, ListMarketsParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, page.Markets, 4)
}

func TestHotMarketsOrder(t *testing.T) {
	svc, _ := newTestMarketService(t)

	hot, err := svc.HotMarkets(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3, 4}, marketIDs(hot))

	hot, err = svc.HotMarkets(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, marketIDs(hot))
}

func TestHotScore(t *testing.T) {
	m := seed.Markets()[1]
	assert.InDelta(t, 110_880.0, HotScore(m), 1e-6)
}

func TestGetMarket(t *testing.T) {
	svc, repo := newTestMarketService(t)
	ctx := context.Background()

	m, err := svc.GetMarket(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Will the Kansas City Chiefs win Super Bowl LX?", m.Question)

	_, err = svc.GetMarket(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.gets.Load())
}

func TestGetMarketNotFound(t *testing.T) {
	svc, repo := newTestMarketService(t)

	_, err := svc.GetMarket(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// errors are never cached
	_, err = svc.GetMarket(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, int32(2), repo.gets.Load())
}

func TestSearch(t *testing.T) {
	svc, _ := newTestMarketService(t)

	res, err := svc.Search(context.Background(), "will")
	require.NoError(t, err)
	assert.Equal(t, "will", res.Query)
	assert.Equal(t, 4, res.Count)

	res, err = svc.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Results)
}

func TestCategories(t *testing.T) {
	svc, _ := newTestMarketService(t)

	cats := svc.Categories()
	require.Len(t, cats, 4)
	for i, c := range cats {
		assert.Equal(t, domain.Categories[i], c.ID)
	}
}

func TestResolutionStatus(t *testing.T) {
	svc, _ := newTestMarketService(t)

	st := svc.ResolutionStatus(context.Background(), 7)
	assert.Equal(t, int64(7), st.MarketID)
	assert.Equal(t, "PENDING", st.OracleStatus)
	assert.False(t, st.DisputeActive)
	assert.Nil(t, st.DisputeEndTime)
	assert.Nil(t, st.ProposedOutcome)
	assert.Equal(t, 500, st.TruthBondAmount)
}
