package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardOverview handles GET /api/v1/schedules/dashboard/overview.
func (h *Handler) DashboardOverview(c *gin.Context) {
	days := intQuery(c, "date_range_days", 7)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	row, start, end, err := h.svc.Overview(c.Request.Context(), days)
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date_range": gin.H{
			"start": start,
			"end":   end,
			"days":  days,
		},
		"metrics": gin.H{
			"total_schedules":        row.TotalSchedules,
			"equipment_scheduled":    row.EquipmentScheduled,
			"active_schedules":       row.ActiveSchedules,
			"upcoming_schedules":     row.UpcomingSchedules,
			"average_duration_hours": row.AvgDurationHours,
		},
	})
}
