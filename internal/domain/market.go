package domain

import "strings"

// Category is one of the fixed market categories.
type Category string

const (
	CategoryPolitics Category = "POLITICS"
	CategoryCrypto   Category = "CRYPTO"
	CategorySports   Category = "SPORTS"
	CategoryCulture  Category = "CULTURE"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPolitics, CategoryCrypto, CategorySports, CategoryCulture}

// Matches reports whether c equals the given category name, ignoring case.
func (c Category) Matches(name string) bool {
	return strings.EqualFold(string(c), name)
}

// MarketMeta is the off-chain metadata of a prediction market.
type MarketMeta struct {
	MarketID        int64    `json:"market_id"`
	Question        string   `json:"question"`
	Description     string   `json:"description"`
	Category        Category `json:"category"`
	ImageURL        string   `json:"image_url"`
	Tags            []string `json:"tags"`
	SourceURL       *string  `json:"source_url"`
	CreatorNote     *string  `json:"creator_note,omitempty"`
	ResolutionRules string   `json:"resolution_rules"`
}

// MarketStats holds the on-chain stats cached off-chain. Prices are in basis
// points (0-10000); yes + no is expected to be 10000 but is not enforced.
type MarketStats struct {
	YesPriceBps    int     `json:"yes_price_bps"`
	NoPriceBps     int     `json:"no_price_bps"`
	TotalVolumeUSD float64 `json:"total_volume_usd"`
	Volume24hUSD   float64 `json:"volume_24h_usd"`
	TotalLiquidity float64 `json:"total_liquidity"`
	NumTraders     int     `json:"num_traders"`
}

// Market is a market record with its embedded stats, serialized flat.
type Market struct {
	MarketMeta
	MarketStats
}

// TagsString renders the tags the way the listing search matches them, e.g.
// "['fed', 'rates']".
func (m Market) TagsString() string {
	quoted := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		quoted[i] = "'" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// MatchesQuery reports whether q (case-insensitive) is a substring of the
// question or of the tags string.
func (m Market) MatchesQuery(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(m.Question), q) ||
		strings.Contains(strings.ToLower(m.TagsString()), q)
}

// MarketPage is one page of a filtered, sorted market listing.
type MarketPage struct {
	Markets    []Market `json:"markets"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// CategorySummary is a row of the category directory.
type CategorySummary struct {
	ID          Category `json:"id"`
	Label       string   `json:"label"`
	Icon        string   `json:"icon"`
	MarketCount int      `json:"market_count"`
	TotalVolume int64    `json:"total_volume"`
}

// SearchResult is the response of a free-text market search.
type SearchResult struct {
	Query   string   `json:"query"`
	Results []Market `json:"results"`
	Count   int      `json:"count"`
}

// ResolutionStatus describes the oracle state of a market.
type ResolutionStatus struct {
	MarketID        int64    `json:"market_id"`
	OracleStatus    string   `json:"oracle_status"`
	DisputeActive   bool     `json:"dispute_active"`
	DisputeEndTime  *float64 `json:"dispute_end_time"`
	ProposedOutcome *string  `json:"proposed_outcome"`
	TruthBondAmount int      `json:"truth_bond_amount"`
}
