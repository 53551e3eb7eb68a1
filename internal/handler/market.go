package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"candlekit/internal/domain"
	"candlekit/internal/market"

	"github.com/gin-gonic/gin"
)

// MarketData is the slice of the fetch layer the HTTP surface needs.
type MarketData interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
	Tickers(ctx context.Context, pairs []string) ([]market.TickerEntry, error)
	OrderBook(ctx context.Context, pair string, depth int) (*domain.OrderBook, error)
	RecentTrades(ctx context.Context, pair string, limit int) ([]domain.Trade, error)
	OHLCV(ctx context.Context, pair, timeframe string, limit int) ([]domain.Candle, error)
}

func (h *Handler) GetTicker(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data unavailable"})
		return
	}

	ticker, err := h.market.Ticker(c.Request.Context(), pairParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker})
}

// GetTickers serves a batch snapshot. Pairs come as a comma-separated query
// value in the same dash or underscore form the path endpoints use.
func (h *Handler) GetTickers(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data unavailable"})
		return
	}

	var pairs []string
	for _, raw := range strings.Split(c.Query("pairs"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			pairs = append(pairs, pairSeparators.Replace(raw))
		}
	}

	entries, err := h.market.Tickers(c.Request.Context(), pairs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickers": entries})
}

func (h *Handler) GetKillzones(c *gin.Context) {
	report, err := market.Killzones(time.Now(), market.KillzoneQuery{
		Date:          strings.TrimSpace(c.Query("date")),
		Profile:       strings.TrimSpace(c.Query("profile")),
		ReferenceZone: strings.TrimSpace(c.Query("reference_timezone")),
		DisplayZone:   strings.TrimSpace(c.Query("timezone")),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *Handler) GetCandles(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data unavailable"})
		return
	}

	timeframe := strings.TrimSpace(c.DefaultQuery("timeframe", "1h"))
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	candles, err := h.market.OHLCV(c.Request.Context(), pairParam(c), timeframe, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeframe": timeframe, "candles": candles})
}

func (h *Handler) GetOrderBook(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data unavailable"})
		return
	}

	depth, ok := queryInt(c, "depth", 0)
	if !ok {
		return
	}

	book, err := h.market.OrderBook(c.Request.Context(), pairParam(c), depth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

func (h *Handler) GetTrades(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data unavailable"})
		return
	}

	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	trades, err := h.market.RecentTrades(c.Request.Context(), pairParam(c), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

var pairSeparators = strings.NewReplacer("-", "/", "_", "/")

// pairParam reads the :pair path segment. A slash cannot appear inside a path
// segment, so the URL form uses a dash or underscore separator (BTC-USDT).
func pairParam(c *gin.Context) string {
	return pairSeparators.Replace(strings.TrimSpace(c.Param("pair")))
}

// queryInt parses an optional integer query parameter, writing a 400 response
// and returning ok=false when the value is present but not a number.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return n, true
}

// queryFloat parses an optional float query parameter the same way.
func queryFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a number"})
		return 0, false
	}
	return f, true
}
