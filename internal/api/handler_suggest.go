package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-scheduling-backend/internal/scheduling"
)

// SmartSuggest handles POST /api/v1/schedules/smart-suggest.
func (h *Handler) SmartSuggest(c *gin.Context) {
	var req scheduling.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}
	if !req.DateRangeEnd.After(req.DateRangeStart) {
		abortError(c, scheduling.ErrInvalidInterval)
		return
	}

	resp, err := h.svc.Suggest(c.Request.Context(), req)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
