package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"traderjournal/internal/repository"
)

// JournalHandler exposes read-only browsing of the journal corpus. The
// capture flow that writes entries and theses lives in another service.
type JournalHandler struct {
	Repo repository.Repository
}

func (h *JournalHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/entries", h.listEntries)
	r.GET("/api/v1/theses", h.listTheses)
	r.GET("/api/v1/theses/:id", h.getThesis)
	r.GET("/api/v1/market-conditions", h.listMarketConditions)
}

// @Summary List journal entries
// @Tags journal
// @Param kind query string false "entry kind"
// @Param ticker query string false "ticker symbol"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/entries [get]
func (h *JournalHandler) listEntries(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	params := repository.ListEntriesParams{
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
		Kind:   strQueryPtr(c, "kind"),
		Ticker: strQueryPtr(c, "ticker"),
		Since:  timeQueryPtr(c, "since"),
		Until:  timeQueryPtr(c, "until"),
	}
	total, err := h.Repo.CountEntries(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	items, err := h.Repo.ListEntries(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{
		"total":  total,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// @Summary List theses
// @Tags journal
// @Param ticker query string false "ticker symbol"
// @Param status query string false "active|closed|expired"
// @Param outcome query string false "win|loss|breakeven"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/theses [get]
func (h *JournalHandler) listTheses(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	items, err := h.Repo.ListTheses(c.Request.Context(), repository.ListThesesParams{
		Limit:      intQuery(c, "limit", 50),
		Offset:     intQuery(c, "offset", 0),
		Ticker:     strQueryPtr(c, "ticker"),
		Status:     strQueryPtr(c, "status"),
		Outcome:    strQueryPtr(c, "outcome"),
		WithTrades: true,
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Get one thesis with its legs and updates
// @Tags journal
// @Param id path int true "thesis id"
// @Success 200 {object} apiResponse
// @Router /api/v1/theses/{id} [get]
func (h *JournalHandler) getThesis(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	thesis, err := h.Repo.GetThesisByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if thesis == nil {
		Error(c, http.StatusNotFound, "thesis not found", nil)
		return
	}
	updates, err := h.Repo.ListUpdatesByThesisIDs(c.Request.Context(), []uint64{id})
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	thesis.Updates = updates
	Ok(c, thesis, nil)
}

// @Summary List daily market conditions
// @Tags journal
// @Param date query string false "single day, YYYY-MM-DD"
// @Param since query string false "range start, YYYY-MM-DD"
// @Param until query string false "range end, YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Router /api/v1/market-conditions [get]
func (h *JournalHandler) listMarketConditions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	if date := timeQueryPtr(c, "date"); date != nil {
		item, err := h.Repo.GetMarketConditionByDate(c.Request.Context(), *date)
		if err != nil {
			Error(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		if item == nil {
			Error(c, http.StatusNotFound, "no market condition for that day", nil)
			return
		}
		Ok(c, item, nil)
		return
	}
	items, err := h.Repo.ListMarketConditions(c.Request.Context(), timeQueryPtr(c, "since"), timeQueryPtr(c, "until"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func timeQueryPtr(c *gin.Context, key string) *time.Time {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return &t
		}
	}
	return nil
}
