package domain

import (
	"fmt"
	"strings"
	"time"
)

// Ticker is a fresh market snapshot for one trading pair. It is never cached.
type Ticker struct {
	Pair         string    `json:"pair"`
	Last         float64   `json:"last"`
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	Change24h    float64   `json:"change_24h"`
	ChangePct24h float64   `json:"change_pct_24h"`
	QuoteVolume  float64   `json:"quote_volume_24h"`
	Timestamp    time.Time `json:"timestamp"`
}

// Candle is one OHLCV bar. Sequences returned by the fetch layer are ordered
// ascending by OpenTime and treated as immutable snapshots by consumers.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Side      TradeSide `json:"side"`
}

type OrderBookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook holds bids descending and asks ascending by price.
type OrderBook struct {
	Pair      string           `json:"pair"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
}

type AlertCondition string

const (
	AlertAbove        AlertCondition = "above"
	AlertBelow        AlertCondition = "below"
	AlertCrossesAbove AlertCondition = "crosses_above"
	AlertCrossesBelow AlertCondition = "crosses_below"
)

func (c AlertCondition) IsValid() bool {
	switch c {
	case AlertAbove, AlertBelow, AlertCrossesAbove, AlertCrossesBelow:
		return true
	}
	return false
}

// Crossing reports whether the condition needs two consecutive observations.
func (c AlertCondition) Crossing() bool {
	return c == AlertCrossesAbove || c == AlertCrossesBelow
}

// Alert is a user-defined price condition. LastKnownPrice is nil until the
// first evaluation; FiredAt is set once and never cleared under the one-shot
// policy.
type Alert struct {
	ID             string         `json:"id"`
	Pair           string         `json:"pair"`
	Condition      AlertCondition `json:"condition"`
	Threshold      float64        `json:"threshold"`
	Message        string         `json:"message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastKnownPrice *float64       `json:"last_known_price,omitempty"`
	FiredAt        *time.Time     `json:"fired_at,omitempty"`
}

func (a Alert) Fired() bool {
	return a.FiredAt != nil
}

// SupportedTimeframes enumerates the candle intervals the upstream exchange
// accepts.
var SupportedTimeframes = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "12h",
	"1d", "3d", "1w", "1M",
}

func ValidTimeframe(timeframe string) bool {
	for _, tf := range SupportedTimeframes {
		if timeframe == tf {
			return true
		}
	}
	return false
}

// SupportedQuotes is the set of quote currencies pairs may settle in.
var SupportedQuotes = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"USD":  {},
	"BTC":  {},
	"ETH":  {},
}

// NormalizePair upper-cases and validates a BASE/QUOTE trading pair against
// the supported quote set. Base symbol existence is left to the upstream
// exchange.
func NormalizePair(pair string) (string, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	base, quote, ok := strings.Cut(pair, "/")
	if !ok || base == "" || quote == "" {
		return "", &ValidationError{Field: "pair", Reason: fmt.Sprintf("invalid pair %q, expected format BASE/QUOTE", pair)}
	}
	if _, supported := SupportedQuotes[quote]; !supported {
		return "", &ValidationError{Field: "pair", Reason: fmt.Sprintf("unsupported quote currency %q", quote)}
	}
	return pair, nil
}
