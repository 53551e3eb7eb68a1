package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"candlekit/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://api.gateio.ws/api/v4"

// GateProvider is a read-only client for the Gate spot REST API. It performs
// single attempts only; retry policy lives in the fetch layer.
type GateProvider struct {
	tracer  trace.Tracer
	baseURL string
	client  *http.Client
}

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewGateProvider(tracer trace.Tracer, cfg Config) *GateProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GateProvider{tracer: tracer, baseURL: baseURL, client: client}
}

type gateTicker struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
	QuoteVolume      string `json:"quote_volume"`
	High24h          string `json:"high_24h"`
	Low24h           string `json:"low_24h"`
}

func (p *GateProvider) Ticker(ctx context.Context, pair string) (*domain.Ticker, error) {
	ctx, span := p.tracer.Start(ctx, "gate.ticker")
	defer span.End()

	var out []gateTicker
	query := url.Values{"currency_pair": {currencyPair(pair)}}
	if err := p.get(ctx, "ticker", "/spot/tickers", query, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &domain.ValidationError{Field: "pair", Reason: fmt.Sprintf("no ticker for %s", pair)}
	}

	t := out[0]
	last := parseFloat(t.Last)
	pct := parseFloat(t.ChangePercentage)
	var change float64
	if pct != -100 {
		change = last - last/(1+pct/100)
	}
	return &domain.Ticker{
		Pair:         pair,
		Last:         last,
		High24h:      parseFloat(t.High24h),
		Low24h:       parseFloat(t.Low24h),
		Change24h:    change,
		ChangePct24h: pct,
		QuoteVolume:  parseFloat(t.QuoteVolume),
		Timestamp:    time.Now().UTC(),
	}, nil
}

type gateOrderBook struct {
	Current int64       `json:"current"`
	Asks    [][2]string `json:"asks"`
	Bids    [][2]string `json:"bids"`
}

func (p *GateProvider) OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error) {
	ctx, span := p.tracer.Start(ctx, "gate.order-book")
	defer span.End()

	var out gateOrderBook
	query := url.Values{
		"currency_pair": {currencyPair(pair)},
		"limit":         {strconv.Itoa(depth)},
	}
	if err := p.get(ctx, "order book", "/spot/order_book", query, &out); err != nil {
		return nil, err
	}

	book := &domain.OrderBook{
		Pair:      pair,
		Bids:      parseLevels(out.Bids),
		Asks:      parseLevels(out.Asks),
		Timestamp: time.UnixMilli(out.Current).UTC(),
	}
	sort.Slice(book.Bids, func(i, j int) bool { return book.Bids[i].Price > book.Bids[j].Price })
	sort.Slice(book.Asks, func(i, j int) bool { return book.Asks[i].Price < book.Asks[j].Price })
	return book, nil
}

type gateTrade struct {
	CreateTimeMs string `json:"create_time_ms"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	Price        string `json:"price"`
}

func (p *GateProvider) RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error) {
	ctx, span := p.tracer.Start(ctx, "gate.recent-trades")
	defer span.End()

	var out []gateTrade
	query := url.Values{
		"currency_pair": {currencyPair(pair)},
		"limit":         {strconv.Itoa(limit)},
	}
	if err := p.get(ctx, "trades", "/spot/trades", query, &out); err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, 0, len(out))
	for _, t := range out {
		side := domain.TradeSell
		if t.Side == "buy" {
			side = domain.TradeBuy
		}
		trades = append(trades, domain.Trade{
			Timestamp: time.UnixMilli(int64(parseFloat(t.CreateTimeMs))).UTC(),
			Price:     parseFloat(t.Price),
			Amount:    parseFloat(t.Amount),
			Side:      side,
		})
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].Timestamp.Before(trades[j].Timestamp) })
	return trades, nil
}

// OHLCV returns candles ordered ascending by open time. Gate candlestick rows
// are [ts, quote_volume, close, high, low, open, base_volume, closed].
func (p *GateProvider) OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error) {
	ctx, span := p.tracer.Start(ctx, "gate.ohlcv")
	defer span.End()

	var out [][]string
	query := url.Values{
		"currency_pair": {currencyPair(pair)},
		"interval":      {timeframe},
		"limit":         {strconv.Itoa(limit)},
	}
	if err := p.get(ctx, "ohlcv", "/spot/candlesticks", query, &out); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(out))
	for _, row := range out {
		if len(row) < 7 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		candles = append(candles, domain.Candle{
			OpenTime: time.Unix(ts, 0).UTC(),
			Open:     parseFloat(row[5]),
			High:     parseFloat(row[3]),
			Low:      parseFloat(row[4]),
			Close:    parseFloat(row[2]),
			Volume:   parseFloat(row[6]),
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime.Before(candles[j].OpenTime) })
	return candles, nil
}

type gateError struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (p *GateProvider) get(ctx context.Context, op, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return &domain.UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: op, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &domain.UpstreamError{Op: op, Transient: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr gateError
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Label == "INVALID_CURRENCY_PAIR" || apiErr.Label == "CURRENCY_PAIR_NOT_FOUND" {
			return &domain.ValidationError{Field: "pair", Reason: apiErr.Message}
		}
		return &domain.UpstreamError{
			Op:        op,
			Status:    resp.StatusCode,
			Transient: transientStatus(resp.StatusCode),
			Err:       fmt.Errorf("%s: %s", apiErr.Label, apiErr.Message),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func currencyPair(pair string) string {
	return strings.ReplaceAll(pair, "/", "_")
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseLevels(raw [][2]string) []domain.OrderBookLevel {
	levels := make([]domain.OrderBookLevel, 0, len(raw))
	for _, l := range raw {
		levels = append(levels, domain.OrderBookLevel{Price: parseFloat(l[0]), Size: parseFloat(l[1])})
	}
	return levels
}
