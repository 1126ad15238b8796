package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"equipment-scheduling-backend/internal/scheduling"
)

type conflictCheckRequest struct {
	EquipmentID       int64     `json:"equipment_id" binding:"required"`
	StartDatetime     time.Time `json:"start_datetime" binding:"required"`
	EndDatetime       time.Time `json:"end_datetime" binding:"required"`
	ExcludeScheduleID *int64    `json:"exclude_schedule_id,omitempty"`
}

type conflictCheckResponse struct {
	HasConflicts  bool                  `json:"has_conflicts"`
	Conflicts     []scheduling.Conflict `json:"conflicts"`
	SeverityLevel scheduling.Severity   `json:"severity_level"`
	Message       string                `json:"message"`
}

// CheckConflicts handles POST /api/v1/schedules/conflicts/check. Non-blocking
// severities are returned as data; only the caller decides what to do.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var req conflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}
	if !req.EndDatetime.After(req.StartDatetime) {
		abortError(c, scheduling.ErrInvalidInterval)
		return
	}

	conflicts, err := h.svc.CheckConflicts(c.Request.Context(), req.EquipmentID, req.StartDatetime, req.EndDatetime, req.ExcludeScheduleID)
	if err != nil {
		abortError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []scheduling.Conflict{}
	}

	message := "No conflicts detected"
	if len(conflicts) > 0 {
		message = fmt.Sprintf("Found %d potential conflicts", len(conflicts))
	}

	c.JSON(http.StatusOK, conflictCheckResponse{
		HasConflicts:  len(conflicts) > 0,
		Conflicts:     conflicts,
		SeverityLevel: scheduling.MaxSeverity(conflicts),
		Message:       message,
	})
}
