package domain

// PositionStatusOpen is the default positions filter. The filter is echoed
// back, never applied.
const PositionStatusOpen = "open"

// Position is a user's holding in a single market.
type Position struct {
	MarketID        int64   `json:"market_id"`
	Question        string  `json:"question"`
	YesShares       float64 `json:"yes_shares"`
	NoShares        float64 `json:"no_shares"`
	AvgCostBps      int     `json:"avg_cost_bps"`
	CurrentPriceBps int     `json:"current_price_bps"`
	UnrealizedPnL   float64 `json:"unrealized_pnl"`
	RealizedPnL     float64 `json:"realized_pnl"`
	ROIPct          float64 `json:"roi_pct"`
}

// UserPositions is the positions response for one address.
type UserPositions struct {
	Address   string     `json:"address"`
	Status    string     `json:"status"`
	Positions []Position `json:"positions"`
}

// UserProfile aggregates a trader's reputation and PnL.
type UserProfile struct {
	Address      string   `json:"address"`
	DisplayName  *string  `json:"display_name"`
	BeliefScore  int      `json:"belief_score"`
	AccuracyRate float64  `json:"accuracy_rate"`
	TotalPnL     float64  `json:"total_pnl"`
	ROIPct       float64  `json:"roi_pct"`
	NumPositions int      `json:"num_positions"`
	WinRate      float64  `json:"win_rate"`
	JoinedAt     int64    `json:"joined_at"`
	Badges       []string `json:"badges"`
}

// LeaderboardEntry is one ranked trader.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Address      string  `json:"address"`
	DisplayName  *string `json:"display_name"`
	AvatarURL    *string `json:"avatar_url"`
	TotalPnL     float64 `json:"total_pnl"`
	ROIPct       float64 `json:"roi_pct"`
	AccuracyRate float64 `json:"accuracy_rate"` // share of resolved markets called correctly
	BeliefScore  int     `json:"belief_score"`
	NumPositions int     `json:"num_positions"`
}
