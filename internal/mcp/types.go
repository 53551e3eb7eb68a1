package mcp

import (
	"fmt"
	"strings"

	"candlekit/internal/alert"
	"candlekit/internal/domain"
	"candlekit/internal/market"
	"candlekit/internal/service"
	"candlekit/internal/ta"
)

const (
	defaultSRBars      = 200
	maxAnalysisBars    = 1000
	defaultProfileBars = 200
)

type marketTickerInput struct {
	Pair string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
}

type marketTickerOutput struct {
	Ticker *domain.Ticker `json:"ticker"`
}

type marketTickersInput struct {
	Pairs []string `json:"pairs" jsonschema:"trading pairs to snapshot in one call"`
}

type marketTickersOutput struct {
	Tickers []market.TickerEntry `json:"tickers"`
}

type marketKillzonesInput struct {
	Date              string `json:"date,omitempty" jsonschema:"session date YYYY-MM-DD in the reference timezone, default today"`
	Timezone          string `json:"timezone,omitempty" jsonschema:"display timezone (IANA name), default UTC"`
	ReferenceTimezone string `json:"reference_timezone,omitempty" jsonschema:"timezone the windows are defined in, default America/New_York"`
	Profile           string `json:"profile,omitempty" jsonschema:"killzone profile, default ict_classic"`
}

type marketKillzonesOutput struct {
	Report *market.KillzoneReport `json:"report"`
}

type marketCandlesInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe: 1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w, ..."`
	Limit     int    `json:"limit,omitempty" jsonschema:"number of candles to return, max 1000"`
}

type marketCandlesOutput struct {
	Pair      string          `json:"pair"`
	Timeframe string          `json:"timeframe"`
	Candles   []domain.Candle `json:"candles"`
}

type marketOrderBookInput struct {
	Pair  string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Depth int    `json:"depth,omitempty" jsonschema:"levels per side, max 100"`
}

type marketOrderBookOutput struct {
	Book *domain.OrderBook `json:"book"`
}

type marketTradesInput struct {
	Pair  string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of trades to return, max 500"`
}

type marketTradesOutput struct {
	Pair   string         `json:"pair"`
	Trades []domain.Trade `json:"trades"`
}

type taMovingAverageInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
	Periods   []int  `json:"periods,omitempty" jsonschema:"optional averaging periods, defaults per indicator"`
}

type taSMAOutput struct {
	Pair      string        `json:"pair"`
	Timeframe string        `json:"timeframe"`
	Result    *ta.SMAResult `json:"result"`
}

type taEMAOutput struct {
	Pair      string        `json:"pair"`
	Timeframe string        `json:"timeframe"`
	Result    *ta.EMAResult `json:"result"`
}

type taRSIInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
	Period    int    `json:"period,omitempty" jsonschema:"RSI period, default 14"`
}

type taRSIOutput struct {
	Pair      string        `json:"pair"`
	Timeframe string        `json:"timeframe"`
	Result    *ta.RSIResult `json:"result"`
}

type taMACDInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
	Fast      int    `json:"fast,omitempty" jsonschema:"fast EMA period, default 12"`
	Slow      int    `json:"slow,omitempty" jsonschema:"slow EMA period, default 26"`
	Signal    int    `json:"signal,omitempty" jsonschema:"signal EMA period, default 9"`
}

type taMACDOutput struct {
	Pair      string         `json:"pair"`
	Timeframe string         `json:"timeframe"`
	Result    *ta.MACDResult `json:"result"`
}

type taPivotsInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
	Type      string `json:"type,omitempty" jsonschema:"pivot formula: traditional, fibonacci, woodie, camarilla"`
}

type taPivotsOutput struct {
	Pair      string          `json:"pair"`
	Timeframe string          `json:"timeframe"`
	Result    *ta.PivotResult `json:"result"`
}

type taSupportResistanceInput struct {
	Pair      string  `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string  `json:"timeframe" jsonschema:"candle timeframe"`
	Bars      int     `json:"bars,omitempty" jsonschema:"candles to scan, default 200"`
	Window    int     `json:"window,omitempty" jsonschema:"bars each side of a local extremum, default 5"`
	Tolerance float64 `json:"tolerance,omitempty" jsonschema:"relative price tolerance for clustering, default 0.005"`
}

type taSupportResistanceOutput struct {
	Pair      string                      `json:"pair"`
	Timeframe string                      `json:"timeframe"`
	Result    *ta.SupportResistanceResult `json:"result"`
}

type taVolumeProfileInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
	Bars      int    `json:"bars,omitempty" jsonschema:"candles to scan, default 200"`
	NumLevels int    `json:"num_levels,omitempty" jsonschema:"price buckets, default 20"`
}

type taVolumeProfileOutput struct {
	Pair      string                  `json:"pair"`
	Timeframe string                  `json:"timeframe"`
	Result    *ta.VolumeProfileResult `json:"result"`
}

type taOrderFlowInput struct {
	Pair  string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Limit int    `json:"limit,omitempty" jsonschema:"recent trades to analyze, max 500"`
}

type taOrderFlowOutput struct {
	Pair   string              `json:"pair"`
	Result *ta.OrderFlowResult `json:"result"`
}

type taForecastInput struct {
	Pair        string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe   string `json:"timeframe" jsonschema:"candle timeframe"`
	TrainLen    int    `json:"train_len,omitempty" jsonschema:"bars to fit, default 100"`
	ForecastLen int    `json:"forecast_len,omitempty" jsonschema:"bars to extrapolate, default 10"`
}

type taForecastOutput struct {
	Pair      string             `json:"pair"`
	Timeframe string             `json:"timeframe"`
	Result    *ta.ForecastResult `json:"result"`
}

type taSummaryInput struct {
	Pair      string `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Timeframe string `json:"timeframe" jsonschema:"candle timeframe"`
}

type taSummaryOutput struct {
	Pair      string            `json:"pair"`
	Timeframe string            `json:"timeframe"`
	Result    *ta.SummaryResult `json:"result"`
}

type portfolioValueInput struct {
	Holdings map[string]float64 `json:"holdings" jsonschema:"coin to amount mapping, e.g. BTC to 0.5"`
	Quote    string             `json:"quote,omitempty" jsonschema:"quote currency for valuation, default USDT"`
}

type portfolioValueOutput struct {
	Valuation *service.PortfolioValuation `json:"valuation"`
}

type alertsSetInput struct {
	Pair      string  `json:"pair" jsonschema:"trading pair (e.g. BTC/USDT)"`
	Condition string  `json:"condition" jsonschema:"above, below, crosses_above, or crosses_below"`
	Threshold float64 `json:"threshold" jsonschema:"trigger price, must be positive"`
	Message   string  `json:"message,omitempty" jsonschema:"optional notification text"`
}

type alertsSetOutput struct {
	Alert domain.Alert `json:"alert"`
}

type alertsListInput struct {
	Pair string `json:"pair,omitempty" jsonschema:"optional pair filter"`
}

type alertsListOutput struct {
	Alerts []domain.Alert `json:"alerts"`
}

type alertsRemoveInput struct {
	ID string `json:"id" jsonschema:"alert id returned by alerts_set"`
}

type alertsRemoveOutput struct {
	Removed domain.Alert `json:"removed"`
}

type alertsCheckInput struct {
	Pair string `json:"pair,omitempty" jsonschema:"optional pair filter"`
}

type alertsCheckOutput struct {
	Report *alert.CheckReport `json:"report"`
}

func normalizeTimeframe(timeframe string) (string, error) {
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		return "", fmt.Errorf("timeframe is required")
	}
	if !domain.ValidTimeframe(timeframe) {
		return "", fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
	return timeframe, nil
}

func normalizePivotType(typ string) (ta.PivotType, error) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		return ta.PivotTraditional, nil
	}
	switch pt := ta.PivotType(typ); pt {
	case ta.PivotTraditional, ta.PivotFibonacci, ta.PivotWoodie, ta.PivotCamarilla:
		return pt, nil
	default:
		return "", fmt.Errorf("unsupported pivot type: %s", typ)
	}
}

func normalizeCondition(condition string) (domain.AlertCondition, error) {
	c := domain.AlertCondition(strings.ToLower(strings.TrimSpace(condition)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported condition: %s", condition)
	}
	return c, nil
}

func normalizeBars(bars, def int) int {
	if bars <= 0 {
		return def
	}
	if bars > maxAnalysisBars {
		return maxAnalysisBars
	}
	return bars
}
