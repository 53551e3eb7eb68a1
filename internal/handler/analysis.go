package handler

import (
	"net/http"
	"strconv"
	"strings"

	"candlekit/internal/ta"

	"github.com/gin-gonic/gin"
)

type portfolioValueRequest struct {
	Holdings map[string]float64 `json:"holdings" binding:"required"`
	Quote    string             `json:"quote"`
}

func (h *Handler) PortfolioValue(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	var req portfolioValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valuation, err := h.analysisService.PortfolioValue(c.Request.Context(), req.Holdings, req.Quote)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valuation": valuation})
}

func (h *Handler) GetSMA(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	periods, ok := queryPeriods(c)
	if !ok {
		return
	}
	result, err := h.analysisService.SMA(c.Request.Context(), pairParam(c), timeframeQuery(c), periods)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetEMA(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	periods, ok := queryPeriods(c)
	if !ok {
		return
	}
	result, err := h.analysisService.EMA(c.Request.Context(), pairParam(c), timeframeQuery(c), periods)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetRSI(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	period, ok := queryInt(c, "period", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.RSI(c.Request.Context(), pairParam(c), timeframeQuery(c), period)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetMACD(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	fast, ok := queryInt(c, "fast", 0)
	if !ok {
		return
	}
	slow, ok := queryInt(c, "slow", 0)
	if !ok {
		return
	}
	signal, ok := queryInt(c, "signal", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.MACD(c.Request.Context(), pairParam(c), timeframeQuery(c), fast, slow, signal)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetPivots(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	typ := ta.PivotType(strings.ToLower(strings.TrimSpace(c.DefaultQuery("type", string(ta.PivotTraditional)))))
	result, err := h.analysisService.Pivots(c.Request.Context(), pairParam(c), timeframeQuery(c), typ)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetSupportResistance(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	bars, ok := queryInt(c, "bars", 200)
	if !ok {
		return
	}
	window, ok := queryInt(c, "window", 0)
	if !ok {
		return
	}
	tolerance, ok := queryFloat(c, "tolerance", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.SupportResistance(c.Request.Context(), pairParam(c), timeframeQuery(c), bars, window, tolerance)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetVolumeProfile(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	bars, ok := queryInt(c, "bars", 200)
	if !ok {
		return
	}
	numLevels, ok := queryInt(c, "levels", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.VolumeProfile(c.Request.Context(), pairParam(c), timeframeQuery(c), bars, numLevels)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetOrderFlow(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.OrderFlow(c.Request.Context(), pairParam(c), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetForecast(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	trainLen, ok := queryInt(c, "train_len", 0)
	if !ok {
		return
	}
	forecastLen, ok := queryInt(c, "forecast_len", 0)
	if !ok {
		return
	}
	result, err := h.analysisService.Forecast(c.Request.Context(), pairParam(c), timeframeQuery(c), trainLen, forecastLen)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) GetSummary(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable"})
		return
	}

	result, err := h.analysisService.Summary(c.Request.Context(), pairParam(c), timeframeQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func timeframeQuery(c *gin.Context) string {
	return strings.TrimSpace(c.DefaultQuery("timeframe", "1h"))
}

func queryPeriods(c *gin.Context) ([]int, bool) {
	raw := strings.TrimSpace(c.Query("periods"))
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	periods := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "periods must be a comma-separated list of integers"})
			return nil, false
		}
		periods = append(periods, n)
	}
	return periods, true
}
