package service

import (
	"context"
	"fmt"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// Leaderboard metrics and timeframes. They are echoed by clients but do not
// change the ranking, which comes from the stored rank order.
const (
	DefaultLeaderboardMetric    = "total_pnl"
	DefaultLeaderboardTimeframe = "alltime"
)

// UserService serves the leaderboard and per-address views.
type UserService struct {
	leaderboard domain.LeaderboardRepository
}

// NewUserService creates a UserService.
func NewUserService(leaderboard domain.LeaderboardRepository) *UserService {
	return &UserService{leaderboard: leaderboard}
}

// Leaderboard returns the first limit ranked traders.
func (s *UserService) Leaderboard(ctx context.Context, _, _ string, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("user_service: leaderboard: %w", err)
	}
	return entries, nil
}

// Profile returns the reputation summary of address.
func (s *UserService) Profile(_ context.Context, address string) domain.UserProfile {
	return domain.UserProfile{
		Address:      address,
		BeliefScore:  4250,
		AccuracyRate: 0.62,
		TotalPnL:     18_750.0,
		ROIPct:       87.4,
		NumPositions: 34,
		WinRate:      0.62,
		JoinedAt:     1_700_000_000,
		Badges:       []string{"early_adopter", "whale"},
	}
}

// Positions returns the positions of address. status is echoed as given.
func (s *UserService) Positions(_ context.Context, address, status string) domain.UserPositions {
	return domain.UserPositions{
		Address: address,
		Status:  status,
		Positions: []domain.Position{{
			MarketID:        1,
			Question:        "Will the Fed cut rates by 50bps before June 2025?",
			YesShares:       10_000.0,
			NoShares:        0.0,
			AvgCostBps:      5900,
			CurrentPriceBps: 6840,
			UnrealizedPnL:   940.0,
			RealizedPnL:     0.0,
			ROIPct:          15.9,
		}},
	}
}
