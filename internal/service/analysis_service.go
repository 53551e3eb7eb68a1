package service

import (
	"context"

	"candlekit/internal/domain"
	"candlekit/internal/market"
	"candlekit/internal/ta"

	"go.opentelemetry.io/otel/trace"
)

const (
	// extra bars fetched beyond an indicator's minimum so smoothed values
	// have settled before the latest bar
	lookbackPad = 100

	summaryLookback = 250
)

// MarketData is the slice of the fetch layer the analysis service needs.
type MarketData interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
	OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error)
	RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error)
}

// AnalysisService fetches the history an indicator needs and runs the pure
// computation over it. All parameter validation beyond pair/timeframe happens
// in the indicator functions themselves.
type AnalysisService struct {
	tracer trace.Tracer
	data   MarketData
}

func NewAnalysisService(tracer trace.Tracer, data MarketData) *AnalysisService {
	return &AnalysisService{tracer: tracer, data: data}
}

func (s *AnalysisService) SMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.SMAResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.sma")
	defer span.End()

	if len(periods) == 0 {
		periods = ta.DefaultSMAPeriods
	}
	candles, err := s.data.OHLCV(ctx, pair, timeframe, lookback(maxInt(periods)))
	if err != nil {
		return nil, err
	}
	return ta.SMA(ta.Closes(candles), periods)
}

func (s *AnalysisService) EMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.EMAResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.ema")
	defer span.End()

	if len(periods) == 0 {
		periods = ta.DefaultEMAPeriods
	}
	candles, err := s.data.OHLCV(ctx, pair, timeframe, lookback(maxInt(periods)))
	if err != nil {
		return nil, err
	}
	return ta.EMASet(ta.Closes(candles), periods)
}

func (s *AnalysisService) RSI(ctx context.Context, pair, timeframe string, period int) (*ta.RSIResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.rsi")
	defer span.End()

	if period <= 0 {
		period = ta.DefaultRSIPeriod
	}
	candles, err := s.data.OHLCV(ctx, pair, timeframe, lookback(period))
	if err != nil {
		return nil, err
	}
	return ta.RSI(ta.Closes(candles), period)
}

func (s *AnalysisService) MACD(ctx context.Context, pair, timeframe string, fast, slow, signal int) (*ta.MACDResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.macd")
	defer span.End()

	if fast <= 0 {
		fast = ta.DefaultMACDFast
	}
	if slow <= 0 {
		slow = ta.DefaultMACDSlow
	}
	if signal <= 0 {
		signal = ta.DefaultMACDSignal
	}
	candles, err := s.data.OHLCV(ctx, pair, timeframe, lookback(slow+signal))
	if err != nil {
		return nil, err
	}
	return ta.MACD(ta.Closes(candles), fast, slow, signal)
}

// Pivots derives pivot levels from the most recent completed bar.
func (s *AnalysisService) Pivots(ctx context.Context, pair, timeframe string, typ ta.PivotType) (*ta.PivotResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.pivots")
	defer span.End()

	candles, err := s.data.OHLCV(ctx, pair, timeframe, 2)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, &domain.InsufficientDataError{Indicator: "pivots", Need: 2, Have: len(candles)}
	}
	return ta.PivotPoints(candles[len(candles)-2], typ)
}

func (s *AnalysisService) SupportResistance(ctx context.Context, pair, timeframe string, bars, window int, tolerance float64) (*ta.SupportResistanceResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.support-resistance")
	defer span.End()

	candles, err := s.data.OHLCV(ctx, pair, timeframe, bars)
	if err != nil {
		return nil, err
	}
	return ta.SupportResistance(candles, window, tolerance, ta.DefaultMaxZones)
}

func (s *AnalysisService) VolumeProfile(ctx context.Context, pair, timeframe string, bars, numLevels int) (*ta.VolumeProfileResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.volume-profile")
	defer span.End()

	candles, err := s.data.OHLCV(ctx, pair, timeframe, bars)
	if err != nil {
		return nil, err
	}
	return ta.VolumeProfile(candles, numLevels)
}

func (s *AnalysisService) OrderFlow(ctx context.Context, pair string, limit int) (*ta.OrderFlowResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.order-flow")
	defer span.End()

	trades, err := s.data.RecentTrades(ctx, pair, limit)
	if err != nil {
		return nil, err
	}
	return ta.OrderFlow(trades)
}

func (s *AnalysisService) Forecast(ctx context.Context, pair, timeframe string, trainLen, forecastLen int) (*ta.ForecastResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.forecast")
	defer span.End()

	if trainLen <= 0 {
		trainLen = ta.DefaultTrainLen
	}
	if forecastLen <= 0 {
		forecastLen = ta.DefaultForecastLen
	}
	candles, err := s.data.OHLCV(ctx, pair, timeframe, trainLen+10)
	if err != nil {
		return nil, err
	}
	return ta.Forecast(ta.Closes(candles), trainLen, forecastLen)
}

func (s *AnalysisService) Summary(ctx context.Context, pair, timeframe string) (*ta.SummaryResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.summary")
	defer span.End()

	candles, err := s.data.OHLCV(ctx, pair, timeframe, summaryLookback)
	if err != nil {
		return nil, err
	}
	return ta.Summary(candles)
}

func lookback(minBars int) int {
	bars := minBars + lookbackPad
	if bars > market.MaxOHLCVLimit {
		return market.MaxOHLCVLimit
	}
	return bars
}

func maxInt(values []int) int {
	m := 0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
