package dto

import "time"

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

type Momentum string

const (
	MomentumOverbought Momentum = "overbought"
	MomentumOversold   Momentum = "oversold"
	MomentumNeutral    Momentum = "neutral"
)

// OHLCV is one daily bar.
type OHLCV struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type Indicators struct {
	SMA50  float64 `json:"sma50"`
	SMA200 float64 `json:"sma200"`
	RSI14  float64 `json:"rsi14"`
	MACD   MACD    `json:"macd"`
}

// MarketSnapshot is the output of the market stage. History is most recent first.
type MarketSnapshot struct {
	Ticker        string     `json:"ticker"`
	FetchedAt     time.Time  `json:"fetched_at"`
	LatestPrice   float64    `json:"latest_price"`
	ChangePercent float64    `json:"change_percent"`
	History       []OHLCV    `json:"history"`
	Indicators    Indicators `json:"indicators"`
	Fallback      bool       `json:"fallback"`
	// Computed lists indicators derived locally from History instead of the provider.
	Computed []string `json:"computed,omitempty"`
}

// MarketSignals is the interpreted view of a snapshot.
type MarketSignals struct {
	LatestPrice float64  `json:"latest_price"`
	SMA50       float64  `json:"sma50"`
	SMA200      float64  `json:"sma200"`
	RSI14       float64  `json:"rsi14"`
	Trend       Trend    `json:"trend"`
	Momentum    Momentum `json:"momentum"`
}
