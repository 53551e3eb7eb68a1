package ta

import (
	"math"

	"candlekit/internal/domain"
)

const (
	DefaultRSIPeriod  = 14
	RSIOverbought     = 70
	RSIOversold       = 30
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
	DefaultStochK     = 14
	StochOverbought   = 80
	StochOversold     = 20
)

type RSIZone string

const (
	ZoneOverbought RSIZone = "overbought"
	ZoneOversold   RSIZone = "oversold"
	ZoneNeutral    RSIZone = "neutral"
)

type RSIResult struct {
	Window int     `json:"window"`
	Period int     `json:"period"`
	Value  float64 `json:"value"`
	Zone   RSIZone `json:"zone"`
}

// RSI computes the latest Wilder-smoothed RSI value over period. The first
// period bars are warm-up and never produce output.
func RSI(closes []float64, period int) (*RSIResult, error) {
	if period <= 0 {
		return nil, &domain.ValidationError{Field: "period", Reason: "period must be positive"}
	}
	if len(closes) <= period {
		return nil, &domain.InsufficientDataError{Indicator: "rsi", Need: period + 1, Have: len(closes)}
	}

	series := wilderRSISeries(closes, period)
	value := series[len(series)-1]

	zone := ZoneNeutral
	switch {
	case value > RSIOverbought:
		zone = ZoneOverbought
	case value < RSIOversold:
		zone = ZoneOversold
	}
	return &RSIResult{Window: len(closes), Period: period, Value: value, Zone: zone}, nil
}

type Reversal string

const (
	ReversalBullish Reversal = "bullish"
	ReversalBearish Reversal = "bearish"
	ReversalNone    Reversal = ""
)

type MACDResult struct {
	Window        int      `json:"window"`
	Fast          int      `json:"fast"`
	Slow          int      `json:"slow"`
	Signal        int      `json:"signal"`
	MACD          float64  `json:"macd"`
	SignalValue   float64  `json:"signal_value"`
	Histogram     float64  `json:"histogram"`
	PrevHistogram float64  `json:"prev_histogram"`
	Reversal      Reversal `json:"reversal,omitempty"`
}

// MACD computes the MACD line, signal line, and histogram, and flags a
// momentum reversal when the histogram changed sign between the last two bars.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, &domain.ValidationError{Field: "period", Reason: "macd periods must be positive"}
	}
	if fast >= slow {
		return nil, &domain.ValidationError{Field: "period", Reason: "fast period must be shorter than slow"}
	}
	need := slow + signal
	if len(closes) < need {
		return nil, &domain.InsufficientDataError{Indicator: "macd", Need: need, Have: len(closes)}
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	// MACD line is defined once the slow EMA is seeded.
	macdLine := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fastEMA[i]-slowEMA[i])
	}
	signalLine := emaSeries(macdLine, signal)

	last := len(macdLine) - 1
	hist := macdLine[last] - signalLine[last]
	prevHist := macdLine[last-1] - signalLine[last-1]
	if math.IsNaN(prevHist) {
		prevHist = 0
	}

	result := &MACDResult{
		Window:        len(closes),
		Fast:          fast,
		Slow:          slow,
		Signal:        signal,
		MACD:          macdLine[last],
		SignalValue:   signalLine[last],
		Histogram:     hist,
		PrevHistogram: prevHist,
	}
	switch {
	case prevHist <= 0 && hist > 0:
		result.Reversal = ReversalBullish
	case prevHist >= 0 && hist < 0:
		result.Reversal = ReversalBearish
	}
	return result, nil
}

// StochasticK returns the raw %K of the last bar over the trailing k bars.
// A flat high-low range yields 50.
func StochasticK(highs, lows, closes []float64, k int) (float64, error) {
	if k <= 0 {
		return 0, &domain.ValidationError{Field: "period", Reason: "period must be positive"}
	}
	if len(closes) < k || len(highs) < k || len(lows) < k {
		return 0, &domain.InsufficientDataError{Indicator: "stochastic", Need: k, Have: len(closes)}
	}

	hh := highs[len(highs)-k]
	ll := lows[len(lows)-k]
	for i := len(highs) - k; i < len(highs); i++ {
		hh = math.Max(hh, highs[i])
		ll = math.Min(ll, lows[i])
	}
	if hh == ll {
		return 50, nil
	}
	return (closes[len(closes)-1] - ll) / (hh - ll) * 100, nil
}
