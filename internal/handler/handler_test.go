package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candlekit/internal/alert"
	"candlekit/internal/domain"
	"candlekit/internal/market"
	"candlekit/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// stubMarket serves both the raw market routes and the analysis service.
type stubMarket struct {
	bars      int
	ticker    *domain.Ticker
	tickerErr error
	ohlcvErr  error
}

func (s *stubMarket) Ticker(ctx context.Context, pair string) (*domain.Ticker, error) {
	if s.tickerErr != nil {
		return nil, s.tickerErr
	}
	if _, err := domain.NormalizePair(pair); err != nil {
		return nil, err
	}
	copy := *s.ticker
	return &copy, nil
}

func (s *stubMarket) Tickers(ctx context.Context, pairs []string) ([]market.TickerEntry, error) {
	if len(pairs) == 0 {
		return nil, &domain.ValidationError{Field: "pairs", Reason: "at least one pair is required"}
	}
	entries := make([]market.TickerEntry, 0, len(pairs))
	for _, pair := range pairs {
		ticker, err := s.Ticker(ctx, pair)
		if err != nil {
			entries = append(entries, market.TickerEntry{Pair: pair, Error: err.Error()})
			continue
		}
		ticker.Pair = pair
		entries = append(entries, market.TickerEntry{Pair: pair, Ticker: ticker})
	}
	return entries, nil
}

func (s *stubMarket) OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error) {
	return &domain.OrderBook{Pair: pair}, nil
}

func (s *stubMarket) RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error) {
	return []domain.Trade{{Price: 50000, Amount: 1, Side: domain.TradeBuy}}, nil
}

func (s *stubMarket) OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error) {
	if s.ohlcvErr != nil {
		return nil, s.ohlcvErr
	}
	n := s.bars
	if n == 0 {
		n = limit
	}
	candles := make([]domain.Candle, n)
	for i := range candles {
		base := 100 + float64(i)
		candles[i] = domain.Candle{Open: base, Close: base + 1, High: base + 1.5, Low: base - 0.5, Volume: 10}
	}
	return candles, nil
}

func newTestRouter(market *stubMarket) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")

	registry := alert.NewRegistry(time.Now)
	h := New(market,
		service.NewAnalysisService(tracer, market),
		service.NewAlertService(tracer, registry, market),
	)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func defaultStubMarket() *stubMarket {
	return &stubMarket{
		ticker: &domain.Ticker{Pair: "BTC/USDT", Last: 50000, High24h: 51000, Low24h: 48000},
	}
}

func doRequest(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetTicker(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/ticker/BTC-USDT", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Ticker domain.Ticker `json:"ticker"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Ticker.Last != 50000 {
		t.Fatalf("unexpected ticker: %+v", resp.Ticker)
	}
}

func TestGetTickerBadPair(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/ticker/BTCUSDT", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed pair, got %d", rec.Code)
	}
}

func TestGetTickersBatch(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/tickers?pairs=BTC-USDT,%20ETH_USDT", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Tickers []market.TickerEntry `json:"tickers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tickers) != 2 {
		t.Fatalf("expected 2 entries, got %+v", resp.Tickers)
	}
	// both separator forms map onto the slash pair
	if resp.Tickers[0].Pair != "BTC/USDT" || resp.Tickers[1].Pair != "ETH/USDT" {
		t.Fatalf("unexpected pairs: %+v", resp.Tickers)
	}
}

func TestGetTickersRequiresPairs(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/tickers", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing pairs, got %d", rec.Code)
	}
}

func TestGetKillzones(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/killzones?timezone=UTC", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Report market.KillzoneReport `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Report.Windows) != 6 || resp.Report.DisplayZone != "UTC" {
		t.Fatalf("unexpected report: %+v", resp.Report)
	}

	rec = doRequest(r, http.MethodGet, "/api/killzones?profile=lunch_break", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown profile, got %d", rec.Code)
	}
}

func TestPortfolioValueEndpoint(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	body, _ := json.Marshal(map[string]any{
		"holdings": map[string]float64{"BTC": 0.5},
	})
	rec := doRequest(r, http.MethodPost, "/api/portfolio/value", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Valuation service.PortfolioValuation `json:"valuation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// stub price 50000 at 0.5 BTC
	if resp.Valuation.Total != 25000 || resp.Valuation.Quote != "USDT" {
		t.Fatalf("unexpected valuation: %+v", resp.Valuation)
	}

	rec = doRequest(r, http.MethodPost, "/api/portfolio/value", []byte(`{"holdings":{}}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty holdings, got %d", rec.Code)
	}
}

func TestGetCandlesRejectsNonNumericLimit(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/candles/BTC-USDT?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestAnalysisInsufficientDataMapsTo422(t *testing.T) {
	market := defaultStubMarket()
	market.bars = 2
	r := newTestRouter(market)

	rec := doRequest(r, http.MethodGet, "/api/analysis/BTC-USDT/rsi", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short history, got %d: %s", rec.Code, rec.Body)
	}
}

func TestTransientErrorMapsTo503(t *testing.T) {
	market := defaultStubMarket()
	market.ohlcvErr = &domain.TransientFetchError{Op: "ohlcv", Attempts: 3, Err: errors.New("upstream down")}
	r := newTestRouter(market)

	rec := doRequest(r, http.MethodGet, "/api/analysis/BTC-USDT/summary", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for transient failure, got %d", rec.Code)
	}
}

func TestAnalysisSummary(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	rec := doRequest(r, http.MethodGet, "/api/analysis/BTC-USDT/summary?timeframe=4h", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAlertLifecycle(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	body, _ := json.Marshal(map[string]any{
		"pair":      "btc/usdt",
		"condition": "above",
		"threshold": 40000,
	})
	rec := doRequest(r, http.MethodPost, "/api/alerts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var created struct {
		Alert domain.Alert `json:"alert"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Alert.Pair != "BTC/USDT" {
		t.Fatalf("expected normalized pair, got %s", created.Alert.Pair)
	}

	rec = doRequest(r, http.MethodGet, "/api/alerts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// stub price 50000 is above the 40000 threshold
	rec = doRequest(r, http.MethodPost, "/api/alerts/check", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var checked struct {
		Report struct {
			Fired []domain.Alert `json:"fired"`
		} `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &checked); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(checked.Report.Fired) != 1 {
		t.Fatalf("expected the alert to fire, got %s", rec.Body)
	}

	rec = doRequest(r, http.MethodDelete, "/api/alerts/"+created.Alert.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(r, http.MethodDelete, "/api/alerts/"+created.Alert.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", rec.Code)
	}
}

func TestSetAlertValidation(t *testing.T) {
	r := newTestRouter(defaultStubMarket())

	body, _ := json.Marshal(map[string]any{
		"pair":      "BTC/USDT",
		"condition": "near",
		"threshold": 40000,
	})
	rec := doRequest(r, http.MethodPost, "/api/alerts", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown condition, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/alerts", []byte(`{"pair":"BTC/USDT"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", rec.Code)
	}
}
