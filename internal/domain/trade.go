package domain

// Trade is a single fill on a market. Timestamps are unix seconds.
type Trade struct {
	MarketID  int64   `json:"market_id"`
	Trader    string  `json:"trader"`
	IsBuyYes  bool    `json:"is_buy_yes"`
	USDCIn    float64 `json:"usdc_in"`
	SharesOut float64 `json:"shares_out"`
	PriceBps  int     `json:"price_bps"`
	TxHash    string  `json:"tx_hash"`
	Timestamp float64 `json:"timestamp"`
}

// Candle is one OHLCV bar. Prices are in basis points.
type Candle struct {
	Time   int64   `json:"time"`
	Open   int     `json:"open"`
	High   int     `json:"high"`
	Low    int     `json:"low"`
	Close  int     `json:"close"`
	Volume float64 `json:"volume"`
}

// PriceHistory is the candle series for one market and interval.
type PriceHistory struct {
	MarketID int64    `json:"market_id"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
}

// Activity is one entry of the whale-watcher ticker.
type Activity struct {
	Type       string  `json:"type"`
	MarketID   int64   `json:"market_id"`
	Question   string  `json:"question"`
	Trader     string  `json:"trader"`
	Direction  string  `json:"direction"`
	USDCAmount float64 `json:"usdc_amount"`
	PriceBps   int     `json:"price_bps"`
	Timestamp  float64 `json:"timestamp"`
}
