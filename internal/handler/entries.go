package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderjournal/internal/service"
)

type EntryHandler struct {
	Service *service.EntryAnalysisService
	Logger  *zap.Logger
}

func (h *EntryHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/entries/:id/reanalyze", h.reanalyze)
}

type reanalyzeRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary Re-run AI analysis on an edited entry
// @Tags entries
// @Param id path int true "entry id"
// @Param request body reanalyzeRequest true "edited content"
// @Success 200 {object} apiResponse
// @Router /api/v1/entries/{id}/reanalyze [post]
func (h *EntryHandler) reanalyze(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req reanalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "content is required", nil)
		return
	}
	result, err := h.Service.Reanalyze(c.Request.Context(), id, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			Error(c, http.StatusNotFound, "entry not found", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("entry reanalysis failed", zap.Uint64("entry_id", id), zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}
