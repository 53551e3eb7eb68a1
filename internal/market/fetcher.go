package market

import (
	"context"
	"strconv"
	"strings"
	"time"

	"candlekit/internal/cache"
	"candlekit/internal/domain"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultOHLCVLimit = 200
	MaxOHLCVLimit     = 1000
	DefaultBookDepth  = 20
	MaxBookDepth      = 100
	DefaultTradeLimit = 50
	MaxTradeLimit     = 500

	defaultMarketTTL    = 60 * time.Second
	defaultOHLCVTTL     = 60 * time.Second
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
)

// Provider is the upstream market-data contract. Implementations perform a
// single attempt per call and classify failures as transient or permanent.
type Provider interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
	OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error)
	RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error)
	OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error)
}

type Config struct {
	MarketTTL    time.Duration // order books and trades
	OHLCVTTL     time.Duration // historical bars change less often
	MaxAttempts  int
	InitialDelay time.Duration
}

// Fetcher validates request parameters, retries transient upstream failures
// with exponential backoff, and serves order-book/trade/OHLCV responses
// through the expiring cache. Tickers always bypass the cache.
type Fetcher struct {
	tracer       trace.Tracer
	provider     Provider
	cache        *cache.Cache
	marketTTL    time.Duration
	ohlcvTTL     time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

func NewFetcher(tracer trace.Tracer, provider Provider, c *cache.Cache, cfg Config) *Fetcher {
	if cfg.MarketTTL <= 0 {
		cfg.MarketTTL = defaultMarketTTL
	}
	if cfg.OHLCVTTL <= 0 {
		cfg.OHLCVTTL = defaultOHLCVTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}
	return &Fetcher{
		tracer:       tracer,
		provider:     provider,
		cache:        c,
		marketTTL:    cfg.MarketTTL,
		ohlcvTTL:     cfg.OHLCVTTL,
		maxAttempts:  cfg.MaxAttempts,
		initialDelay: cfg.InitialDelay,
	}
}

// Ticker fetches a fresh price snapshot, never served from cache.
func (f *Fetcher) Ticker(ctx context.Context, pair string) (*domain.Ticker, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.ticker")
	defer span.End()

	pair, err := domain.NormalizePair(pair)
	if err != nil {
		return nil, err
	}
	return retryTransient(ctx, f, "ticker", func(ctx context.Context) (*domain.Ticker, error) {
		return f.provider.Ticker(ctx, pair)
	})
}

// TickerEntry is one pair's outcome in a batch snapshot. Failures are
// recorded per entry so one bad pair does not fail the whole batch.
type TickerEntry struct {
	Pair   string         `json:"pair"`
	Ticker *domain.Ticker `json:"ticker,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Tickers fetches fresh snapshots for several pairs in request order. Like
// Ticker, results never come from cache.
func (f *Fetcher) Tickers(ctx context.Context, pairs []string) ([]TickerEntry, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.tickers")
	defer span.End()

	if len(pairs) == 0 {
		return nil, &domain.ValidationError{Field: "pairs", Reason: "at least one pair is required"}
	}

	entries := make([]TickerEntry, 0, len(pairs))
	for _, raw := range pairs {
		pair, err := domain.NormalizePair(raw)
		if err != nil {
			entries = append(entries, TickerEntry{Pair: strings.ToUpper(strings.TrimSpace(raw)), Error: err.Error()})
			continue
		}
		ticker, err := f.Ticker(ctx, pair)
		if err != nil {
			entries = append(entries, TickerEntry{Pair: pair, Error: err.Error()})
			continue
		}
		entries = append(entries, TickerEntry{Pair: pair, Ticker: ticker})
	}
	return entries, nil
}

func (f *Fetcher) OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.order-book")
	defer span.End()

	pair, err := domain.NormalizePair(pair)
	if err != nil {
		return nil, err
	}
	depth = clamp(depth, DefaultBookDepth, MaxBookDepth)

	key := cache.Key("book", pair, strconv.Itoa(depth))
	return cache.GetOrCompute(ctx, f.cache, key, f.marketTTL, func(ctx context.Context) (*domain.OrderBook, error) {
		return retryTransient(ctx, f, "order book", func(ctx context.Context) (*domain.OrderBook, error) {
			return f.provider.OrderBook(ctx, pair, depth)
		})
	})
}

func (f *Fetcher) RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.recent-trades")
	defer span.End()

	pair, err := domain.NormalizePair(pair)
	if err != nil {
		return nil, err
	}
	limit = clamp(limit, DefaultTradeLimit, MaxTradeLimit)

	key := cache.Key("trades", pair, strconv.Itoa(limit))
	return cache.GetOrCompute(ctx, f.cache, key, f.marketTTL, func(ctx context.Context) ([]domain.Trade, error) {
		return retryTransient(ctx, f, "trades", func(ctx context.Context) ([]domain.Trade, error) {
			return f.provider.RecentTrades(ctx, pair, limit)
		})
	})
}

func (f *Fetcher) OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.ohlcv")
	defer span.End()

	pair, err := domain.NormalizePair(pair)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTimeframe(timeframe) {
		return nil, &domain.ValidationError{Field: "timeframe", Reason: "unsupported timeframe " + timeframe}
	}
	limit = clamp(limit, DefaultOHLCVLimit, MaxOHLCVLimit)

	key := cache.Key("ohlcv", pair, timeframe, strconv.Itoa(limit))
	return cache.GetOrCompute(ctx, f.cache, key, f.ohlcvTTL, func(ctx context.Context) ([]domain.Candle, error) {
		return retryTransient(ctx, f, "ohlcv", func(ctx context.Context) ([]domain.Candle, error) {
			return f.provider.OHLCV(ctx, pair, timeframe, limit)
		})
	})
}

// retryTransient retries fn on transient upstream failures with jittered
// exponential backoff, up to the fetcher's attempt budget. Validation and
// other permanent failures abort immediately.
func retryTransient[T any](ctx context.Context, f *Fetcher, op string, fn func(context.Context) (T, error)) (T, error) {
	attempts := 0
	operation := func() (T, error) {
		attempts++
		value, err := fn(ctx)
		if err != nil && !domain.IsTransient(err) {
			return value, backoff.Permanent(err)
		}
		return value, err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.initialDelay
	expo.Multiplier = 2

	value, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(f.maxAttempts)),
	)
	if err != nil {
		if domain.IsTransient(err) {
			var zero T
			return zero, &domain.TransientFetchError{Op: op, Attempts: attempts, Err: err}
		}
		var zero T
		return zero, err
	}
	return value, nil
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
