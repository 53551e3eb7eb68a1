package ta

import (
	"candlekit/internal/domain"
)

var (
	DefaultSMAPeriods = []int{20, 50, 200}
	DefaultEMAPeriods = []int{34, 89, 200}
)

// MovingAverage is one period's result. Available is false when the series is
// shorter than the period; Value and DeviationPct are meaningless then.
type MovingAverage struct {
	Period       int     `json:"period"`
	Value        float64 `json:"value"`
	DeviationPct float64 `json:"deviation_pct"`
	Available    bool    `json:"available"`
}

type SMAResult struct {
	Window    int             `json:"window"`
	LastClose float64         `json:"last_close"`
	Averages  []MovingAverage `json:"averages"`
}

// SMA computes simple moving averages of the closes for each period. Periods
// longer than the series are reported unavailable rather than shortened.
func SMA(closes []float64, periods []int) (*SMAResult, error) {
	if len(periods) == 0 {
		periods = DefaultSMAPeriods
	}
	for _, p := range periods {
		if p <= 0 {
			return nil, &domain.ValidationError{Field: "period", Reason: "period must be positive"}
		}
	}
	if len(closes) == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "sma", Need: 1, Have: 0}
	}

	last := closes[len(closes)-1]
	result := &SMAResult{Window: len(closes), LastClose: last, Averages: make([]MovingAverage, 0, len(periods))}
	for _, p := range periods {
		if len(closes) < p {
			result.Averages = append(result.Averages, MovingAverage{Period: p})
			continue
		}
		value := mean(closes[len(closes)-p:])
		ma := MovingAverage{Period: p, Value: value, Available: true}
		if value != 0 {
			ma.DeviationPct = (last - value) / value * 100
		}
		result.Averages = append(result.Averages, ma)
	}
	return result, nil
}

type TrendAlignment string

const (
	TrendBullish TrendAlignment = "bullish"
	TrendBearish TrendAlignment = "bearish"
	TrendMixed   TrendAlignment = "mixed"
)

type EMAResult struct {
	Window    int             `json:"window"`
	LastClose float64         `json:"last_close"`
	Averages  []MovingAverage `json:"averages"`
	Alignment TrendAlignment  `json:"alignment"`
}

// EMASet computes exponential moving averages for each period and reports the
// trend alignment of the latest close against every available EMA.
func EMASet(closes []float64, periods []int) (*EMAResult, error) {
	if len(periods) == 0 {
		periods = DefaultEMAPeriods
	}
	for _, p := range periods {
		if p <= 0 {
			return nil, &domain.ValidationError{Field: "period", Reason: "period must be positive"}
		}
	}
	if len(closes) == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "ema", Need: 1, Have: 0}
	}

	last := closes[len(closes)-1]
	result := &EMAResult{Window: len(closes), LastClose: last, Averages: make([]MovingAverage, 0, len(periods))}

	aboveAll, belowAll := true, true
	available := 0
	for _, p := range periods {
		series := emaSeries(closes, p)
		value := series[len(series)-1]
		if len(closes) < p {
			result.Averages = append(result.Averages, MovingAverage{Period: p})
			continue
		}
		available++
		ma := MovingAverage{Period: p, Value: value, Available: true}
		if value != 0 {
			ma.DeviationPct = (last - value) / value * 100
		}
		result.Averages = append(result.Averages, ma)
		if last <= value {
			aboveAll = false
		}
		if last >= value {
			belowAll = false
		}
	}
	if available == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "ema", Need: minPeriod(periods), Have: len(closes)}
	}

	switch {
	case aboveAll:
		result.Alignment = TrendBullish
	case belowAll:
		result.Alignment = TrendBearish
	default:
		result.Alignment = TrendMixed
	}
	return result, nil
}

func minPeriod(periods []int) int {
	min := periods[0]
	for _, p := range periods[1:] {
		if p < min {
			min = p
		}
	}
	return min
}
