package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EquipmentAvailability handles
// GET /api/v1/schedules/equipment/{id}/availability?start=&end=.
func (h *Handler) EquipmentAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	start, ok := timeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := timeQuery(c, "end")
	if !ok {
		return
	}

	availability, err := h.svc.Availability(c.Request.Context(), id, start, end)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// EquipmentStatistics handles
// GET /api/v1/schedules/equipment/{id}/statistics?start=&end=.
func (h *Handler) EquipmentStatistics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	start, ok := timeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := timeQuery(c, "end")
	if !ok {
		return
	}

	stats, err := h.svc.Statistics(c.Request.Context(), id, start, end)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
