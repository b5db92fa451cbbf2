package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderjournal/internal/service"
)

type AdvisorHandler struct {
	Service *service.AdvisorService
	Logger  *zap.Logger
}

func (h *AdvisorHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/reminders", h.reminders)
	r.GET("/api/v1/theses/similar", h.similar)
	r.POST("/api/v1/drafts/check", h.checkDraft)
}

// @Summary Pre-trade reminders for a candidate trade
// @Tags advisor
// @Param ticker query string true "ticker symbol"
// @Param strategy query string false "strategy type"
// @Param iv query number false "implied volatility pct"
// @Param hv query number false "historical volatility pct"
// @Success 200 {object} apiResponse
// @Router /api/v1/reminders [get]
func (h *AdvisorHandler) reminders(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		Error(c, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	result, err := h.Service.TradeReminders(c.Request.Context(), service.TradeQuery{
		Ticker:       ticker,
		StrategyType: strQueryPtr(c, "strategy"),
		IV:           float64QueryPtr(c, "iv"),
		HV:           float64QueryPtr(c, "hv"),
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("reminder generation failed", zap.String("ticker", ticker), zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, result, map[string]any{"count": len(result.Reminders)})
}

// @Summary Past theses similar to a candidate trade
// @Tags advisor
// @Param ticker query string true "ticker symbol"
// @Param strategy query string false "strategy type"
// @Success 200 {object} apiResponse
// @Router /api/v1/theses/similar [get]
func (h *AdvisorHandler) similar(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		Error(c, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	matches, err := h.Service.SimilarTheses(c.Request.Context(), ticker, strQueryPtr(c, "strategy"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, matches, map[string]any{"count": len(matches)})
}

type checkDraftRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary Check an in-progress draft against flagged history
// @Tags advisor
// @Param request body checkDraftRequest true "draft content"
// @Success 200 {object} apiResponse
// @Router /api/v1/drafts/check [post]
func (h *AdvisorHandler) checkDraft(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req checkDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "content is required", nil)
		return
	}
	alert, err := h.Service.CheckDraft(c.Request.Context(), req.Content)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("draft check failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if alert == nil {
		Ok(c, nil, map[string]any{"matched": false})
		return
	}
	Ok(c, alert, map[string]any{"matched": true})
}
