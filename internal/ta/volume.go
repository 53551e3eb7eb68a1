package ta

import (
	"candlekit/internal/domain"
)

const (
	DefaultProfileLevels = 20
	valueAreaShare       = 0.70
)

type VolumeBucket struct {
	Price  float64 `json:"price"` // bucket center
	Volume float64 `json:"volume"`
}

type VolumeProfileResult struct {
	Window       int            `json:"window"`
	NumLevels    int            `json:"num_levels"`
	BucketWidth  float64        `json:"bucket_width"`
	POC          float64        `json:"poc"`
	VAH          float64        `json:"vah"`
	VAL          float64        `json:"val"`
	POCVolume    float64        `json:"poc_volume"`
	TotalVolume  float64        `json:"total_volume"`
	ValueAreaPct float64        `json:"value_area_pct"`
	Buckets      []VolumeBucket `json:"buckets"`
}

// VolumeProfile partitions the observed price range into numLevels
// equal-width buckets, spreading each bar's volume evenly across the buckets
// its high-low range spans, then finds the Point of Control and the smallest
// contiguous bucket run around it capturing 70% of total volume. A series
// with zero price range collapses to a single bucket with POC=VAH=VAL.
func VolumeProfile(candles []domain.Candle, numLevels int) (*VolumeProfileResult, error) {
	if numLevels <= 0 {
		numLevels = DefaultProfileLevels
	}
	if len(candles) == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "volume profile", Need: 1, Have: 0}
	}

	priceMin, priceMax := candles[0].Low, candles[0].High
	var totalVolume float64
	for _, c := range candles {
		if c.Low < priceMin {
			priceMin = c.Low
		}
		if c.High > priceMax {
			priceMax = c.High
		}
		totalVolume += c.Volume
	}

	if priceMax == priceMin {
		return &VolumeProfileResult{
			Window:       len(candles),
			NumLevels:    1,
			POC:          priceMin,
			VAH:          priceMin,
			VAL:          priceMin,
			POCVolume:    totalVolume,
			TotalVolume:  totalVolume,
			ValueAreaPct: 100,
			Buckets:      []VolumeBucket{{Price: priceMin, Volume: totalVolume}},
		}, nil
	}

	width := (priceMax - priceMin) / float64(numLevels)
	volumes := make([]float64, numLevels)
	for _, c := range candles {
		start := bucketIndex(c.Low, priceMin, width, numLevels)
		end := bucketIndex(c.High, priceMin, width, numLevels)
		perLevel := c.Volume / float64(end-start+1)
		for lvl := start; lvl <= end; lvl++ {
			volumes[lvl] += perLevel
		}
	}

	poc := 0
	for lvl, v := range volumes {
		if v > volumes[poc] {
			poc = lvl
		}
	}

	// Expand the value area outward from POC, taking the heavier neighbor.
	target := totalVolume * valueAreaShare
	accumulated := volumes[poc]
	lower, upper := poc, poc
	for accumulated < target {
		var volAbove, volBelow float64
		if upper+1 < numLevels {
			volAbove = volumes[upper+1]
		}
		if lower-1 >= 0 {
			volBelow = volumes[lower-1]
		}
		if volAbove == 0 && volBelow == 0 && upper+1 >= numLevels && lower-1 < 0 {
			break
		}
		if volAbove >= volBelow && upper+1 < numLevels {
			upper++
			accumulated += volAbove
		} else if lower-1 >= 0 {
			lower--
			accumulated += volBelow
		} else if upper+1 < numLevels {
			upper++
			accumulated += volAbove
		} else {
			break
		}
	}

	center := func(lvl int) float64 { return priceMin + (float64(lvl)+0.5)*width }
	buckets := make([]VolumeBucket, numLevels)
	for lvl, v := range volumes {
		buckets[lvl] = VolumeBucket{Price: center(lvl), Volume: v}
	}

	valueAreaPct := 0.0
	if totalVolume > 0 {
		valueAreaPct = accumulated / totalVolume * 100
	}
	return &VolumeProfileResult{
		Window:       len(candles),
		NumLevels:    numLevels,
		BucketWidth:  width,
		POC:          center(poc),
		VAH:          center(upper),
		VAL:          center(lower),
		POCVolume:    volumes[poc],
		TotalVolume:  totalVolume,
		ValueAreaPct: valueAreaPct,
		Buckets:      buckets,
	}, nil
}

func bucketIndex(price, priceMin, width float64, numLevels int) int {
	idx := int((price - priceMin) / width)
	if idx < 0 {
		return 0
	}
	if idx >= numLevels {
		return numLevels - 1
	}
	return idx
}

type OrderFlowResult struct {
	Trades      int     `json:"trades"`
	BuyVolume   float64 `json:"buy_volume"`
	SellVolume  float64 `json:"sell_volume"`
	TotalVolume float64 `json:"total_volume"`
	BuyCount    int     `json:"buy_count"`
	SellCount   int     `json:"sell_count"`
	Delta       float64 `json:"delta"`
	DeltaPct    float64 `json:"delta_pct"`
	AvgBuySize  float64 `json:"avg_buy_size"`
	AvgSellSize float64 `json:"avg_sell_size"`
	QuoteValue  float64 `json:"quote_value"`
}

// OrderFlow splits recent trades by aggressor side and reports the buy-sell
// volume delta, absolute and as a share of total volume.
func OrderFlow(trades []domain.Trade) (*OrderFlowResult, error) {
	if len(trades) == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "order flow", Need: 1, Have: 0}
	}

	result := &OrderFlowResult{Trades: len(trades)}
	for _, t := range trades {
		result.QuoteValue += t.Price * t.Amount
		switch t.Side {
		case domain.TradeBuy:
			result.BuyVolume += t.Amount
			result.BuyCount++
		case domain.TradeSell:
			result.SellVolume += t.Amount
			result.SellCount++
		}
	}
	result.TotalVolume = result.BuyVolume + result.SellVolume
	if result.TotalVolume == 0 {
		return nil, &domain.InsufficientDataError{Indicator: "order flow", Need: 1, Have: 0}
	}

	result.Delta = result.BuyVolume - result.SellVolume
	result.DeltaPct = result.Delta / result.TotalVolume * 100
	if result.BuyCount > 0 {
		result.AvgBuySize = result.BuyVolume / float64(result.BuyCount)
	}
	if result.SellCount > 0 {
		result.AvgSellSize = result.SellVolume / float64(result.SellCount)
	}
	return result, nil
}
