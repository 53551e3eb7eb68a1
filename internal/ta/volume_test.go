package ta

import (
	"testing"

	"candlekit/internal/domain"
)

func TestVolumeProfileConcentratedVolume(t *testing.T) {
	candles := []domain.Candle{
		{Low: 100, High: 101, Volume: 10},
		{Low: 104.9, High: 105.1, Volume: 100},
		{Low: 100, High: 110, Volume: 20},
	}

	result, err := VolumeProfile(candles, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumLevels != 20 || !almostEqual(result.BucketWidth, 0.5) {
		t.Fatalf("unexpected bucketing: %+v", result)
	}
	// the heavy bar splits across buckets 9 and 10; POC is the first of them
	if !almostEqual(result.POC, 104.75) {
		t.Fatalf("expected POC 104.75, got %g", result.POC)
	}
	if !almostEqual(result.VAL, 104.75) || !almostEqual(result.VAH, 105.25) {
		t.Fatalf("expected value area [104.75, 105.25], got [%g, %g]", result.VAL, result.VAH)
	}
	if !almostEqual(result.TotalVolume, 130) {
		t.Fatalf("expected total volume 130, got %g", result.TotalVolume)
	}
	if len(result.Buckets) != 20 {
		t.Fatalf("expected 20 buckets, got %d", len(result.Buckets))
	}
}

func TestVolumeProfileZeroPriceRange(t *testing.T) {
	candles := []domain.Candle{{Low: 100, High: 100, Volume: 5}}

	result, err := VolumeProfile(candles, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumLevels != 1 {
		t.Fatalf("expected a single bucket, got %d", result.NumLevels)
	}
	if result.POC != 100 || result.VAH != 100 || result.VAL != 100 {
		t.Fatalf("expected POC=VAH=VAL=100, got %g/%g/%g", result.POC, result.VAH, result.VAL)
	}
	if result.ValueAreaPct != 100 {
		t.Fatalf("expected 100%% value area, got %g", result.ValueAreaPct)
	}
}

func TestVolumeProfileEmpty(t *testing.T) {
	_, err := VolumeProfile(nil, 20)
	if !domain.IsInsufficientData(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestOrderFlow(t *testing.T) {
	trades := []domain.Trade{
		{Price: 100, Amount: 1, Side: domain.TradeBuy},
		{Price: 101, Amount: 3, Side: domain.TradeBuy},
		{Price: 99, Amount: 2, Side: domain.TradeSell},
	}

	result, err := OrderFlow(trades)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BuyVolume != 4 || result.SellVolume != 2 {
		t.Fatalf("unexpected volumes: buy %g sell %g", result.BuyVolume, result.SellVolume)
	}
	if result.BuyCount != 2 || result.SellCount != 1 {
		t.Fatalf("unexpected counts: buy %d sell %d", result.BuyCount, result.SellCount)
	}
	if result.Delta != 2 || !almostEqual(result.DeltaPct, 100.0/3) {
		t.Fatalf("unexpected delta: %g (%g%%)", result.Delta, result.DeltaPct)
	}
	if result.AvgBuySize != 2 || result.AvgSellSize != 2 {
		t.Fatalf("unexpected average sizes: %g/%g", result.AvgBuySize, result.AvgSellSize)
	}
	if !almostEqual(result.QuoteValue, 601) {
		t.Fatalf("expected quote value 601, got %g", result.QuoteValue)
	}
}

func TestOrderFlowEmpty(t *testing.T) {
	if _, err := OrderFlow(nil); !domain.IsInsufficientData(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}
