package mcp

import (
	"context"

	"candlekit/internal/alert"
	"candlekit/internal/domain"
	"candlekit/internal/market"
	"candlekit/internal/service"
	"candlekit/internal/ta"
)

// MarketReader exposes raw market-data reads backed by the fetch layer.
type MarketReader interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
	Tickers(ctx context.Context, pairs []string) ([]market.TickerEntry, error)
	OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error)
	RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error)
	OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error)
}

// Analyzer exposes the indicator computations over fetched history.
type Analyzer interface {
	SMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.SMAResult, error)
	EMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.EMAResult, error)
	RSI(ctx context.Context, pair, timeframe string, period int) (*ta.RSIResult, error)
	MACD(ctx context.Context, pair, timeframe string, fast, slow, signal int) (*ta.MACDResult, error)
	Pivots(ctx context.Context, pair, timeframe string, typ ta.PivotType) (*ta.PivotResult, error)
	SupportResistance(ctx context.Context, pair, timeframe string, bars, window int, tolerance float64) (*ta.SupportResistanceResult, error)
	VolumeProfile(ctx context.Context, pair, timeframe string, bars, numLevels int) (*ta.VolumeProfileResult, error)
	OrderFlow(ctx context.Context, pair string, limit int) (*ta.OrderFlowResult, error)
	Forecast(ctx context.Context, pair, timeframe string, trainLen, forecastLen int) (*ta.ForecastResult, error)
	Summary(ctx context.Context, pair, timeframe string) (*ta.SummaryResult, error)
	PortfolioValue(ctx context.Context, holdings map[string]float64, quote string) (*service.PortfolioValuation, error)
}

// AlertManager exposes the alert registry operations.
type AlertManager interface {
	Set(ctx context.Context, pair string, condition domain.AlertCondition, threshold float64, message string) (domain.Alert, error)
	List(ctx context.Context, pair string) ([]domain.Alert, error)
	Remove(ctx context.Context, id string) (domain.Alert, error)
	Check(ctx context.Context, pair string) (*alert.CheckReport, error)
}
