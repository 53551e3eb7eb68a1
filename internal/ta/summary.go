package ta

import (
	"candlekit/internal/domain"
)

type SummaryLabel string

const (
	SummaryBullish SummaryLabel = "bullish"
	SummaryBearish SummaryLabel = "bearish"
	SummaryNeutral SummaryLabel = "neutral"
)

type Contribution struct {
	Name string `json:"name"`
	Vote int    `json:"vote"` // +1, 0, or -1
}

type SummaryResult struct {
	Window       int            `json:"window"`
	LastClose    float64        `json:"last_close"`
	Label        SummaryLabel   `json:"label"`
	Score        float64        `json:"score"` // sum of votes / contributors, in [-1, 1]
	Contributors []Contribution `json:"contributors"`
	Excluded     []string       `json:"excluded,omitempty"`
}

// Summary aggregates oscillator, moving-average-alignment, and pivot-position
// votes into one directional score. An indicator short on history is excluded
// from the denominator instead of voting neutral, so a young series does not
// dilute the signal. A zero score is neutral.
func Summary(candles []domain.Candle) (*SummaryResult, error) {
	if len(candles) < 2 {
		return nil, &domain.InsufficientDataError{Indicator: "summary", Need: 2, Have: len(candles)}
	}

	closes := Closes(candles)
	highs := Highs(candles)
	lows := Lows(candles)
	last := closes[len(closes)-1]

	result := &SummaryResult{Window: len(candles), LastClose: last}
	vote := func(name string, v int, err error) error {
		if err != nil {
			if domain.IsInsufficientData(err) {
				result.Excluded = append(result.Excluded, name)
				return nil
			}
			return err
		}
		result.Contributors = append(result.Contributors, Contribution{Name: name, Vote: v})
		return nil
	}

	rsi, err := RSI(closes, DefaultRSIPeriod)
	v := 0
	if err == nil {
		if rsi.Value < RSIOversold {
			v = 1
		} else if rsi.Value > RSIOverbought {
			v = -1
		}
	}
	if err := vote("rsi", v, err); err != nil {
		return nil, err
	}

	stoch, err := StochasticK(highs, lows, closes, DefaultStochK)
	v = 0
	if err == nil {
		if stoch < StochOversold {
			v = 1
		} else if stoch > StochOverbought {
			v = -1
		}
	}
	if err := vote("stochastic", v, err); err != nil {
		return nil, err
	}

	macd, err := MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	v = 0
	if err == nil {
		if macd.Histogram > 0 {
			v = 1
		} else if macd.Histogram < 0 {
			v = -1
		}
	}
	if err := vote("macd", v, err); err != nil {
		return nil, err
	}

	emas, err := EMASet(closes, DefaultEMAPeriods)
	v = 0
	if err == nil {
		switch emas.Alignment {
		case TrendBullish:
			v = 1
		case TrendBearish:
			v = -1
		}
	}
	if err := vote("ema_alignment", v, err); err != nil {
		return nil, err
	}

	pivots, err := PivotPoints(candles[len(candles)-2], PivotTraditional)
	v = 0
	if err == nil {
		switch pivots.Position(last) {
		case PositionAboveR1:
			v = 1
		case PositionBelowS1:
			v = -1
		}
	}
	if err := vote("pivot_position", v, err); err != nil {
		return nil, err
	}

	if len(result.Contributors) == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "summary", Need: DefaultStochK, Have: len(candles)}
	}

	sum := 0
	for _, c := range result.Contributors {
		sum += c.Vote
	}
	result.Score = float64(sum) / float64(len(result.Contributors))
	switch {
	case result.Score > 0:
		result.Label = SummaryBullish
	case result.Score < 0:
		result.Label = SummaryBearish
	default:
		result.Label = SummaryNeutral
	}
	return result, nil
}
