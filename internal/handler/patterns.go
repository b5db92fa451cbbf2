package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderjournal/internal/repository"
	"traderjournal/internal/service"
)

type PatternHandler struct {
	Service *service.PatternService
	Logger  *zap.Logger
}

func (h *PatternHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/patterns")
	group.POST("/analyze", h.analyze)
	group.GET("", h.list)
	group.POST("/:id/dismiss", h.dismiss)
}

// @Summary Run pattern mining
// @Tags patterns
// @Success 200 {object} apiResponse
// @Router /api/v1/patterns/analyze [post]
func (h *PatternHandler) analyze(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	result, err := h.Service.Analyze(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("pattern analysis failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, result, map[string]any{
		"statistical": result.Statistical,
		"qualitative": result.Qualitative,
		"saved":       len(result.Saved),
	})
}

// @Summary List pattern insights
// @Tags patterns
// @Param type query string false "pattern type"
// @Param active query bool false "active filter (default true)"
// @Param dismissed query bool false "dismissed filter (default false)"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/patterns [get]
func (h *PatternHandler) list(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListPatternsParams{
		Limit:     intQuery(c, "limit", 100),
		Offset:    intQuery(c, "offset", 0),
		Type:      strQueryPtr(c, "type"),
		Active:    boolQueryPtr(c, "active"),
		Dismissed: boolQueryPtr(c, "dismissed"),
	}
	items, err := h.Service.ActivePatterns(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Dismiss a pattern insight
// @Tags patterns
// @Param id path int true "pattern id"
// @Success 200 {object} apiResponse
// @Router /api/v1/patterns/{id}/dismiss [post]
func (h *PatternHandler) dismiss(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Service.Dismiss(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			Error(c, http.StatusNotFound, "pattern not found", nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"id": id, "dismissed": true}, nil)
}
