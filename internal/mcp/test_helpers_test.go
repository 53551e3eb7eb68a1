package mcp

import (
	"context"
	"time"

	"candlekit/internal/alert"
	"candlekit/internal/domain"
	"candlekit/internal/market"
	"candlekit/internal/service"
	"candlekit/internal/ta"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubMarketReader struct {
	ticker *domain.Ticker

	lastPair      string
	lastPairs     []string
	lastTimeframe string
	lastLimit     int
}

func (s *stubMarketReader) Ticker(ctx context.Context, pair string) (*domain.Ticker, error) {
	s.lastPair = pair
	copy := *s.ticker
	return &copy, nil
}

func (s *stubMarketReader) Tickers(ctx context.Context, pairs []string) ([]market.TickerEntry, error) {
	s.lastPairs = append([]string(nil), pairs...)
	if len(pairs) == 0 {
		return nil, &domain.ValidationError{Field: "pairs", Reason: "at least one pair is required"}
	}
	entries := make([]market.TickerEntry, 0, len(pairs))
	for _, pair := range pairs {
		copy := *s.ticker
		copy.Pair = pair
		entries = append(entries, market.TickerEntry{Pair: pair, Ticker: &copy})
	}
	return entries, nil
}

func (s *stubMarketReader) OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error) {
	s.lastPair = pair
	s.lastLimit = depth
	return &domain.OrderBook{
		Pair: pair,
		Bids: []domain.OrderBookLevel{{Price: 49999, Size: 1}},
		Asks: []domain.OrderBookLevel{{Price: 50001, Size: 1}},
	}, nil
}

func (s *stubMarketReader) RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error) {
	s.lastPair = pair
	s.lastLimit = limit
	return []domain.Trade{{Price: 50000, Amount: 1, Side: domain.TradeBuy}}, nil
}

func (s *stubMarketReader) OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error) {
	s.lastPair = pair
	s.lastTimeframe = timeframe
	s.lastLimit = limit
	return []domain.Candle{{Open: 1, High: 2, Low: 1, Close: 2, Volume: 3, OpenTime: time.Unix(0, 0).UTC()}}, nil
}

type stubAnalyzer struct {
	summary *ta.SummaryResult

	lastPair      string
	lastTimeframe string
	lastPeriods   []int
	lastHoldings  map[string]float64
	lastQuote     string
}

func (s *stubAnalyzer) SMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.SMAResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	s.lastPeriods = append([]int(nil), periods...)
	return &ta.SMAResult{Window: 100, LastClose: 2}, nil
}

func (s *stubAnalyzer) EMA(ctx context.Context, pair, timeframe string, periods []int) (*ta.EMAResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.EMAResult{Window: 100, LastClose: 2}, nil
}

func (s *stubAnalyzer) RSI(ctx context.Context, pair, timeframe string, period int) (*ta.RSIResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.RSIResult{Period: period, Value: 55, Zone: ta.ZoneNeutral}, nil
}

func (s *stubAnalyzer) MACD(ctx context.Context, pair, timeframe string, fast, slow, signal int) (*ta.MACDResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.MACDResult{}, nil
}

func (s *stubAnalyzer) Pivots(ctx context.Context, pair, timeframe string, typ ta.PivotType) (*ta.PivotResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.PivotResult{Type: typ, Pivot: 100}, nil
}

func (s *stubAnalyzer) SupportResistance(ctx context.Context, pair, timeframe string, bars, window int, tolerance float64) (*ta.SupportResistanceResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.SupportResistanceResult{}, nil
}

func (s *stubAnalyzer) VolumeProfile(ctx context.Context, pair, timeframe string, bars, numLevels int) (*ta.VolumeProfileResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.VolumeProfileResult{}, nil
}

func (s *stubAnalyzer) OrderFlow(ctx context.Context, pair string, limit int) (*ta.OrderFlowResult, error) {
	s.lastPair = pair
	return &ta.OrderFlowResult{Trades: 1}, nil
}

func (s *stubAnalyzer) Forecast(ctx context.Context, pair, timeframe string, trainLen, forecastLen int) (*ta.ForecastResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	return &ta.ForecastResult{}, nil
}

func (s *stubAnalyzer) Summary(ctx context.Context, pair, timeframe string) (*ta.SummaryResult, error) {
	s.lastPair, s.lastTimeframe = pair, timeframe
	if s.summary != nil {
		return s.summary, nil
	}
	return &ta.SummaryResult{Label: ta.SummaryNeutral}, nil
}

func (s *stubAnalyzer) PortfolioValue(ctx context.Context, holdings map[string]float64, quote string) (*service.PortfolioValuation, error) {
	s.lastHoldings = holdings
	s.lastQuote = quote
	if len(holdings) == 0 {
		return nil, &domain.ValidationError{Field: "holdings", Reason: "at least one coin:amount entry is required"}
	}
	return &service.PortfolioValuation{Quote: "USDT", Total: 25000, Priced: len(holdings)}, nil
}

type stubAlertManager struct {
	alerts map[string]domain.Alert
	report *alert.CheckReport

	lastCheckPair string
}

func newStubAlertManager() *stubAlertManager {
	return &stubAlertManager{alerts: make(map[string]domain.Alert)}
}

func (s *stubAlertManager) Set(ctx context.Context, pair string, condition domain.AlertCondition, threshold float64, message string) (domain.Alert, error) {
	a := domain.Alert{
		ID:        "alert-1",
		Pair:      pair,
		Condition: condition,
		Threshold: threshold,
		Message:   message,
		CreatedAt: time.Unix(0, 0).UTC(),
	}
	s.alerts[a.ID] = a
	return a, nil
}

func (s *stubAlertManager) List(ctx context.Context, pair string) ([]domain.Alert, error) {
	out := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubAlertManager) Remove(ctx context.Context, id string) (domain.Alert, error) {
	a, ok := s.alerts[id]
	if !ok {
		return domain.Alert{}, &domain.NotFoundError{Kind: "alert", ID: id}
	}
	delete(s.alerts, id)
	return a, nil
}

func (s *stubAlertManager) Check(ctx context.Context, pair string) (*alert.CheckReport, error) {
	s.lastCheckPair = pair
	if s.report != nil {
		return s.report, nil
	}
	return &alert.CheckReport{}, nil
}

func testServer() (*sdkmcp.Server, *stubMarketReader, *stubAnalyzer, *stubAlertManager) {
	market := &stubMarketReader{
		ticker: &domain.Ticker{Pair: "BTC/USDT", Last: 50000, High24h: 51000, Low24h: 48000},
	}
	analysis := &stubAnalyzer{}
	alerts := newStubAlertManager()

	srv := NewServer(nil, market, analysis, alerts, ServerConfig{RequestTimeout: time.Second})
	return srv, market, analysis, alerts
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}
