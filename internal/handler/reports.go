package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderjournal/internal/service"
)

type ReportHandler struct {
	Service *service.ReportService
	Logger  *zap.Logger
}

func (h *ReportHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/reports/monthly", h.monthly)
}

// @Summary Month-in-review report
// @Tags reports
// @Param year query int false "year (defaults to previous month)"
// @Param month query int false "month 1-12"
// @Success 200 {object} apiResponse
// @Router /api/v1/reports/monthly [get]
func (h *ReportHandler) monthly(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	prev := time.Now().UTC().AddDate(0, -1, 0)
	year := intQuery(c, "year", prev.Year())
	month := intQuery(c, "month", int(prev.Month()))
	if month < 1 || month > 12 {
		Error(c, http.StatusBadRequest, "invalid month", nil)
		return
	}
	report, err := h.Service.Monthly(c.Request.Context(), year, time.Month(month))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("monthly report failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, report, nil)
}
