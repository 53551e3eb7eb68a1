package handler

import (
	"net/http"
	"strings"

	"candlekit/internal/domain"

	"github.com/gin-gonic/gin"
)

type setAlertRequest struct {
	Pair      string  `json:"pair" binding:"required"`
	Condition string  `json:"condition" binding:"required"`
	Threshold float64 `json:"threshold" binding:"required"`
	Message   string  `json:"message"`
}

func (h *Handler) SetAlert(c *gin.Context) {
	if h.alertService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alerts unavailable"})
		return
	}

	var req setAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	condition := domain.AlertCondition(strings.ToLower(strings.TrimSpace(req.Condition)))
	created, err := h.alertService.Set(c.Request.Context(), req.Pair, condition, req.Threshold, req.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"alert": created})
}

func (h *Handler) ListAlerts(c *gin.Context) {
	if h.alertService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alerts unavailable"})
		return
	}

	alerts, err := h.alertService.List(c.Request.Context(), strings.TrimSpace(c.Query("pair")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) RemoveAlert(c *gin.Context) {
	if h.alertService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alerts unavailable"})
		return
	}

	removed, err := h.alertService.Remove(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) CheckAlerts(c *gin.Context) {
	if h.alertService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alerts unavailable"})
		return
	}

	report, err := h.alertService.Check(c.Request.Context(), strings.TrimSpace(c.Query("pair")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
