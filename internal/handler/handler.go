package handler

import (
	"net/http"

	"candlekit/internal/domain"
	"candlekit/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	market          MarketData
	analysisService *service.AnalysisService
	alertService    *service.AlertService
}

func New(market MarketData, analysisService *service.AnalysisService, alertService *service.AlertService) *Handler {
	return &Handler{
		market:          market,
		analysisService: analysisService,
		alertService:    alertService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.GET("/api/ticker/:pair", h.GetTicker)
	r.GET("/api/tickers", h.GetTickers)
	r.GET("/api/candles/:pair", h.GetCandles)
	r.GET("/api/orderbook/:pair", h.GetOrderBook)
	r.GET("/api/trades/:pair", h.GetTrades)
	r.GET("/api/killzones", h.GetKillzones)

	r.GET("/api/analysis/:pair/sma", h.GetSMA)
	r.GET("/api/analysis/:pair/ema", h.GetEMA)
	r.GET("/api/analysis/:pair/rsi", h.GetRSI)
	r.GET("/api/analysis/:pair/macd", h.GetMACD)
	r.GET("/api/analysis/:pair/pivots", h.GetPivots)
	r.GET("/api/analysis/:pair/levels", h.GetSupportResistance)
	r.GET("/api/analysis/:pair/volume-profile", h.GetVolumeProfile)
	r.GET("/api/analysis/:pair/order-flow", h.GetOrderFlow)
	r.GET("/api/analysis/:pair/forecast", h.GetForecast)
	r.GET("/api/analysis/:pair/summary", h.GetSummary)

	r.POST("/api/portfolio/value", h.PortfolioValue)

	r.POST("/api/alerts", h.SetAlert)
	r.GET("/api/alerts", h.ListAlerts)
	r.DELETE("/api/alerts/:id", h.RemoveAlert)
	r.POST("/api/alerts/check", h.CheckAlerts)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// abortWithError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are treated as upstream failures rather than leaking a 500 for what
// is almost always a fetch problem.
func abortWithError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsInsufficientData(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case domain.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
