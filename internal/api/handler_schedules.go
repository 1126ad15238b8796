package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"equipment-scheduling-backend/internal/model"
	"equipment-scheduling-backend/internal/scheduling"
	"equipment-scheduling-backend/internal/store"
)

// CreateSchedule handles POST /api/v1/schedules.
func (h *Handler) CreateSchedule(c *gin.Context) {
	var input scheduling.CreateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}

	detail, err := h.svc.Create(c.Request.Context(), input, currentUserID(c))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// GetSchedule handles GET /api/v1/schedules/{id}.
func (h *Handler) GetSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelSchedule handles DELETE /api/v1/schedules/{id}. Cancellation is a
// status mutation; the row stays for audit.
func (h *Handler) CancelSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled active completed cancelled"`
}

// UpdateScheduleStatus handles PUT /api/v1/schedules/{id}/status.
func (h *Handler) UpdateScheduleStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
		return
	}

	detail, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// scheduleListResponse is the paginated list envelope.
type scheduleListResponse struct {
	Schedules   []*scheduling.ScheduleDetail `json:"schedules"`
	Total       int64                        `json:"total"`
	Page        int                          `json:"page"`
	PerPage     int                          `json:"per_page"`
	TotalPages  int                          `json:"total_pages"`
	HasNext     bool                         `json:"has_next"`
	HasPrevious bool                         `json:"has_previous"`
}

// ListSchedules handles GET /api/v1/schedules with filters and pagination.
func (h *Handler) ListSchedules(c *gin.Context) {
	filter, ok := scheduleFilterFromQuery(c)
	if !ok {
		return
	}

	page := intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := intQuery(c, "per_page", 20)
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	pageReq := store.PageRequest{
		Page:          page,
		PerPage:       perPage,
		SortAscending: c.Query("sort") == "asc",
	}

	details, total, err := h.svc.List(c.Request.Context(), filter, pageReq)
	if err != nil {
		abortError(c, err)
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	c.JSON(http.StatusOK, scheduleListResponse{
		Schedules:   details,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	})
}

// EquipmentSchedules handles GET /api/v1/schedules/equipment/{id}/schedules:
// an equipment-centric listing for timeline views, ascending by start.
func (h *Handler) EquipmentSchedules(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	filter, ok := scheduleFilterFromQuery(c)
	if !ok {
		return
	}
	filter.EquipmentID = &id

	details, _, err := h.svc.List(c.Request.Context(), filter, store.PageRequest{
		Page:          1,
		PerPage:       1000,
		SortAscending: true,
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func scheduleFilterFromQuery(c *gin.Context) (store.ScheduleFilter, bool) {
	var f store.ScheduleFilter

	for name, dst := range map[string]**int64{
		"equipment_id": &f.EquipmentID,
		"project_id":   &f.ProjectID,
		"operator_id":  &f.OperatorID,
	} {
		if raw := c.Query(name); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": "invalid " + name})
				return f, false
			}
			*dst = &id
		}
	}

	if status := c.Query("status"); status != "" {
		switch status {
		case model.ScheduleStatusScheduled, model.ScheduleStatusActive,
			model.ScheduleStatusCompleted, model.ScheduleStatusCancelled:
			f.Status = status
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": "invalid status"})
			return f, false
		}
	}

	for name, dst := range map[string]**time.Time{
		"start_date": &f.StartDate,
		"end_date":   &f.EndDate,
	} {
		if raw := c.Query(name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": "invalid " + name + ", use RFC3339"})
				return f, false
			}
			*dst = &t
		}
	}
	return f, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
