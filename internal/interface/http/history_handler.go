package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// History returns recent summaries, optionally filtered by a search term.
func (h *SummaryHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}

	items, err := h.svc.History(c.Request.Context(), limit, c.Query("search"))
	if err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": items, "count": len(items)})
}

// GetSummary returns a single stored summary by id.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, found, err := h.svc.GetSummary(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "summary not found", nil))
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteSummary removes a single stored summary by id.
func (h *SummaryHandler) DeleteSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteSummary(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}
	if !deleted {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "summary not found", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearHistory removes every stored summary.
func (h *SummaryHandler) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context()); err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Metrics exposes the in-process counters and latency aggregates.
func (h *SummaryHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.recorder.Snapshot())
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be a positive integer", err))
		return 0, false
	}
	return id, true
}
