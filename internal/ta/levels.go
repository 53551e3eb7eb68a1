package ta

import (
	"sort"

	"candlekit/internal/domain"
)

const (
	DefaultExtremumWindow = 5
	DefaultZoneTolerance  = 0.005
	DefaultMaxZones       = 5
)

type Zone struct {
	Price   float64 `json:"price"`
	Touches int     `json:"touches"`
	LastBar int     `json:"last_bar"`
}

type SupportResistanceResult struct {
	Window     int     `json:"window"`
	LastClose  float64 `json:"last_close"`
	Resistance []Zone  `json:"resistance"`
	Support    []Zone  `json:"support"`
}

type extremum struct {
	price float64
	index int
}

// SupportResistance finds local highs/lows (a bar that is the extreme of its
// symmetric window), clusters extrema within a relative price tolerance, and
// ranks the resulting zones by touch count, most-recent first on ties.
func SupportResistance(candles []domain.Candle, window int, tolerance float64, maxZones int) (*SupportResistanceResult, error) {
	if window <= 0 {
		window = DefaultExtremumWindow
	}
	if tolerance <= 0 {
		tolerance = DefaultZoneTolerance
	}
	if maxZones <= 0 {
		maxZones = DefaultMaxZones
	}
	need := 2*window + 1
	if len(candles) < need {
		return nil, &domain.InsufficientDataError{Indicator: "support/resistance", Need: need, Have: len(candles)}
	}

	highs := Highs(candles)
	lows := Lows(candles)

	var resistance, support []extremum
	for i := window; i < len(candles)-window; i++ {
		if isWindowMax(highs, i, window) {
			resistance = append(resistance, extremum{price: highs[i], index: i})
		}
		if isWindowMin(lows, i, window) {
			support = append(support, extremum{price: lows[i], index: i})
		}
	}

	return &SupportResistanceResult{
		Window:     len(candles),
		LastClose:  candles[len(candles)-1].Close,
		Resistance: clusterZones(resistance, tolerance, maxZones),
		Support:    clusterZones(support, tolerance, maxZones),
	}, nil
}

func isWindowMax(values []float64, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if values[j] > values[i] {
			return false
		}
	}
	return true
}

func isWindowMin(values []float64, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if values[j] < values[i] {
			return false
		}
	}
	return true
}

func clusterZones(extrema []extremum, tolerance float64, maxZones int) []Zone {
	if len(extrema) == 0 {
		return nil
	}
	sorted := append([]extremum(nil), extrema...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].price > sorted[j].price })

	var zones []Zone
	cluster := []extremum{sorted[0]}
	flush := func() {
		var sum float64
		lastBar := cluster[0].index
		for _, e := range cluster {
			sum += e.price
			if e.index > lastBar {
				lastBar = e.index
			}
		}
		zones = append(zones, Zone{
			Price:   sum / float64(len(cluster)),
			Touches: len(cluster),
			LastBar: lastBar,
		})
	}
	for _, e := range sorted[1:] {
		anchor := cluster[len(cluster)-1].price
		if anchor != 0 && abs(e.price-anchor)/anchor < tolerance {
			cluster = append(cluster, e)
			continue
		}
		flush()
		cluster = []extremum{e}
	}
	flush()

	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Touches != zones[j].Touches {
			return zones[i].Touches > zones[j].Touches
		}
		return zones[i].LastBar > zones[j].LastBar
	})
	if len(zones) > maxZones {
		zones = zones[:maxZones]
	}
	return zones
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
