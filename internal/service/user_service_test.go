package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/store/seed"
)

func TestLeaderboardIgnoresMetricAndTimeframe(t *testing.T) {
	svc := NewUserService(seed.NewLeaderboardStore(nil))
	ctx := context.Background()

	byPnL, err := svc.Leaderboard(ctx, "total_pnl", "alltime", 50)
	require.NoError(t, err)
	require.Len(t, byPnL, 3)

	byScore, err := svc.Leaderboard(ctx, "accuracy_rate", "7d", 50)
	require.NoError(t, err)
	assert.Equal(t, byPnL, byScore)

	top, err := svc.Leaderboard(ctx, "", "", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", top[0].Address)
}

func TestProfileAndPositions(t *testing.T) {
	svc := NewUserService(seed.NewLeaderboardStore(nil))
	ctx := context.Background()

	p := svc.Profile(ctx, "0xabc")
	assert.Equal(t, "0xabc", p.Address)
	assert.Nil(t, p.DisplayName)
	assert.Equal(t, 4250, p.BeliefScore)
	assert.Equal(t, []string{"early_adopter", "whale"}, p.Badges)

	pos := svc.Positions(ctx, "0xabc", "closed")
	assert.Equal(t, "closed", pos.Status)
	require.Len(t, pos.Positions, 1)
	assert.Equal(t, int64(1), pos.Positions[0].MarketID)
	assert.Equal(t, 940.0, pos.Positions[0].UnrealizedPnL)
}

func TestActivityFeed(t *testing.T) {
	svc := NewFeedService(seed.NewMarketStore(nil), fixedClock(testNow))

	feed, err := svc.Activity(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, feed, 12)

	first := feed[0]
	assert.Equal(t, "WHALE_TRADE", first.Type)
	assert.Equal(t, "Will the Fed cut rates by 50bps before June 2025?…", first.Question)
	assert.Equal(t, "0xaaaa…bbbb", first.Trader)
	assert.Equal(t, "YES", first.Direction)
	assert.Equal(t, 10_000.0, first.USDCAmount)
	assert.Equal(t, 6840, first.PriceBps)

	fifth := feed[5]
	assert.Equal(t, int64(2), fifth.MarketID)
	assert.Equal(t, "NO", fifth.Direction)
	assert.Equal(t, 47_500.0, fifth.USDCAmount)
	assert.Equal(t, float64(testNow.Add(-225*time.Second).Unix()), fifth.Timestamp)

	short, err := svc.Activity(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, short, 2)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
	assert.Equal(t, "abc", truncateRunes("abc", 60))
}
