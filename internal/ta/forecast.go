package ta

import (
	"math"

	"candlekit/internal/domain"
)

const (
	DefaultTrainLen    = 100
	DefaultForecastLen = 10
)

type ForecastResult struct {
	TrainLen    int       `json:"train_len"`
	ForecastLen int       `json:"forecast_len"`
	Slope       float64   `json:"slope"`
	Intercept   float64   `json:"intercept"`
	R2          float64   `json:"r2"`
	ResidualStd float64   `json:"residual_std"`
	LastClose   float64   `json:"last_close"`
	Path        []float64 `json:"path"`
	UpperBand   float64   `json:"upper_band"`
	LowerBand   float64   `json:"lower_band"`
}

// Forecast fits an ordinary least-squares line to the last trainLen closes
// (price against bar index) and extrapolates forecastLen bars ahead. This is
// a directional heuristic only: a straight line fitted to a noisy series
// carries no statistical claim beyond the fitted window.
func Forecast(closes []float64, trainLen, forecastLen int) (*ForecastResult, error) {
	if trainLen < 2 {
		return nil, &domain.ValidationError{Field: "train_len", Reason: "training window must be at least 2 bars"}
	}
	if forecastLen < 1 {
		return nil, &domain.ValidationError{Field: "forecast_len", Reason: "forecast length must be at least 1 bar"}
	}
	if len(closes) < trainLen {
		return nil, &domain.InsufficientDataError{Indicator: "forecast", Need: trainLen, Have: len(closes)}
	}

	y := closes[len(closes)-trainLen:]
	n := float64(trainLen)
	xMean := (n - 1) / 2
	yMean := mean(y)

	var num, denom float64
	for i, v := range y {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		denom += dx * dx
	}
	slope := 0.0
	if denom != 0 {
		slope = num / denom
	}
	intercept := yMean - slope*xMean

	var ssRes, ssTot float64
	for i, v := range y {
		pred := slope*float64(i) + intercept
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - yMean) * (v - yMean)
	}
	r2 := 1.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}
	residualStd := math.Sqrt(ssRes / n)

	path := make([]float64, forecastLen)
	for j := 0; j < forecastLen; j++ {
		path[j] = slope*float64(trainLen+j) + intercept
	}
	end := path[forecastLen-1]

	return &ForecastResult{
		TrainLen:    trainLen,
		ForecastLen: forecastLen,
		Slope:       slope,
		Intercept:   intercept,
		R2:          r2,
		ResidualStd: residualStd,
		LastClose:   y[trainLen-1],
		Path:        path,
		UpperBand:   end + 2*residualStd,
		LowerBand:   end - 2*residualStd,
	}, nil
}
