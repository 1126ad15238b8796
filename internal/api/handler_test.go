package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equipment-scheduling-backend/config"
	"equipment-scheduling-backend/internal/db"
	"equipment-scheduling-backend/internal/model"
	"equipment-scheduling-backend/internal/scheduling"
	"equipment-scheduling-backend/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	st := store.NewGormStore(gormDB)
	svc := scheduling.NewService(st, scheduling.Options{})

	serverCfg := config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	return NewRouter(svc, st, serverCfg, nil), gormDB
}

func seedEquipment(t *testing.T, gormDB *gorm.DB, name string) model.Equipment {
	t.Helper()
	eq := model.Equipment{Name: name, Status: model.EquipmentStatusAvailable, IsActive: true}
	require.NoError(t, gormDB.Create(&eq).Error)
	return eq
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

var apiBase = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func hour(h int) string {
	return apiBase.Add(time.Duration(h) * time.Hour).Format(time.RFC3339)
}

func TestScheduleLifecycleOverHTTP(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Excavator CAT 320")

	// Create.
	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
		"notes":          "foundation dig",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID            int64  `json:"id"`
		Status        string `json:"status"`
		EquipmentName string `json:"equipment_name"`
	}
	decodeBody(t, w, &created)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "Excavator CAT 320", created.EquipmentName)

	// Read back.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/schedules/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Activate.
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/schedules/%d/status", created.ID), gin.H{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, "active", updated.Status)

	// Cancel via DELETE is rejected only for completed; active cancels fine.
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/schedules/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/schedules/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &updated)
	assert.Equal(t, "cancelled", updated.Status)
}

func TestCreateScheduleConflictResponse(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Crane LTM 1060")

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(10),
		"end_datetime":   hour(12),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Kind      string `json:"kind"`
		Conflicts []struct {
			Severity     string  `json:"severity"`
			OverlapHours float64 `json:"overlap_hours"`
		} `json:"conflicts"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "conflict", resp.Kind)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "error", resp.Conflicts[0].Severity)
	assert.InDelta(t, 2.0, resp.Conflicts[0].OverlapHours, 1e-9)
}

func TestCreateScheduleValidation(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Loader 950")

	testCases := []struct {
		name     string
		body     gin.H
		wantCode int
		wantKind string
	}{
		{
			name:     "missing equipment id",
			body:     gin.H{"start_datetime": hour(8), "end_datetime": hour(10)},
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_request",
		},
		{
			name:     "end before start",
			body:     gin.H{"equipment_id": eq.ID, "start_datetime": hour(10), "end_datetime": hour(8)},
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_request",
		},
		{
			name:     "unknown equipment",
			body:     gin.H{"equipment_id": 9999, "start_datetime": hour(8), "end_datetime": hour(10)},
			wantCode: http.StatusNotFound,
			wantKind: "not_found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", tc.body)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
			var resp struct {
				Kind string `json:"kind"`
			}
			decodeBody(t, w, &resp)
			assert.Equal(t, tc.wantKind, resp.Kind)
		})
	}
}

func TestConflictCheckEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Dozer D8")

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("overlap reported without blocking", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/schedules/conflicts/check", gin.H{
			"equipment_id":   eq.ID,
			"start_datetime": hour(10),
			"end_datetime":   hour(12),
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			HasConflicts  bool   `json:"has_conflicts"`
			SeverityLevel string `json:"severity_level"`
			Message       string `json:"message"`
		}
		decodeBody(t, w, &resp)
		assert.True(t, resp.HasConflicts)
		assert.Equal(t, "error", resp.SeverityLevel)
		assert.Equal(t, "Found 1 potential conflicts", resp.Message)
	})

	t.Run("clear interval", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/schedules/conflicts/check", gin.H{
			"equipment_id":   eq.ID,
			"start_datetime": hour(100),
			"end_datetime":   hour(104),
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			HasConflicts bool                  `json:"has_conflicts"`
			Conflicts    []scheduling.Conflict `json:"conflicts"`
			Message      string                `json:"message"`
		}
		decodeBody(t, w, &resp)
		assert.False(t, resp.HasConflicts)
		assert.NotNil(t, resp.Conflicts)
		assert.Empty(t, resp.Conflicts)
		assert.Equal(t, "No conflicts detected", resp.Message)
	})

	t.Run("invalid interval", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/schedules/conflicts/check", gin.H{
			"equipment_id":   eq.ID,
			"start_datetime": hour(12),
			"end_datetime":   hour(10),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Backhoe 420F")

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/schedules/equipment/%d/availability?start=%s&end=%s", eq.ID, hour(0), hour(24))
	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AvailableSlots        []any   `json:"available_slots"`
		ScheduledSlots        []any   `json:"scheduled_slots"`
		UtilizationPercentage float64 `json:"utilization_percentage"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.AvailableSlots, 2)
	assert.Len(t, resp.ScheduledSlots, 1)
	assert.InDelta(t, 33.33, resp.UtilizationPercentage, 1e-9)

	t.Run("missing time bounds", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/schedules/equipment/%d/availability", eq.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatisticsEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Telehandler TH417")

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/schedules/equipment/%d/statistics?start=%s&end=%s", eq.ID, hour(0), hour(24))
	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalSchedules      int     `json:"total_schedules"`
		TotalScheduledHours float64 `json:"total_scheduled_hours"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.TotalSchedules)
	assert.InDelta(t, 8.0, resp.TotalScheduledHours, 1e-9)
}

func TestSmartSuggestEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Grader 140")

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
		"equipment_id":   eq.ID,
		"start_datetime": hour(8),
		"end_datetime":   hour(16),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/schedules/smart-suggest", gin.H{
		"equipment_id":           eq.ID,
		"desired_duration_hours": 4,
		"date_range_start":       hour(0),
		"date_range_end":         hour(24),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Suggestions          []any `json:"suggestions"`
		BestSuggestion       *any  `json:"best_suggestion"`
		AlternativeEquipment []any `json:"alternative_equipment"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Suggestions, 2)
	assert.NotNil(t, resp.BestSuggestion)
	assert.NotNil(t, resp.AlternativeEquipment)
}

func TestListSchedulesEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Paver AP555")

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/schedules", gin.H{
			"equipment_id":   eq.ID,
			"start_datetime": hour(i * 48),
			"end_datetime":   hour(i*48 + 4),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedules?page=1&per_page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Schedules   []any `json:"schedules"`
		Total       int64 `json:"total"`
		TotalPages  int   `json:"total_pages"`
		HasNext     bool  `json:"has_next"`
		HasPrevious bool  `json:"has_previous"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Schedules, 2)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.False(t, resp.HasPrevious)

	t.Run("invalid status filter", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/schedules?status=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("equipment timeline", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/schedules/equipment/%d/schedules", eq.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var items []any
		decodeBody(t, w, &items)
		assert.Len(t, items, 3)
	})
}

func TestEquipmentListEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedEquipment(t, gormDB, "Excavator CAT 320")
	seedEquipment(t, gormDB, "Loader 950")

	w := doJSON(t, r, http.MethodGet, "/api/v1/equipment", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []model.Equipment
	decodeBody(t, w, &items)
	assert.Len(t, items, 2)
}

func TestSubscriptionEndpoints(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Crane LTM 1060")

	put := gin.H{
		"endpoint":             "https://push.example.com/sub/1",
		"p256dh":               "key",
		"auth":                 "secret",
		"subscribed_equipment": []int64{eq.ID},
	}
	w := doJSON(t, r, http.MethodPut, "/api/v1/subscriptions", put)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/subscriptions?endpoint=https%3A%2F%2Fpush.example.com%2Fsub%2F1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Endpoint            string  `json:"endpoint"`
		SubscribedEquipment []int64 `json:"subscribed_equipment"`
	}
	decodeBody(t, w, &got)
	assert.Equal(t, "https://push.example.com/sub/1", got.Endpoint)
	assert.Equal(t, []int64{eq.ID}, got.SubscribedEquipment)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/subscriptions", gin.H{"endpoint": "https://push.example.com/sub/1"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/subscriptions?endpoint=https%3A%2F%2Fpush.example.com%2Fsub%2F1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDashboardOverviewEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	eq := seedEquipment(t, gormDB, "Dozer D8")

	// Overview windows trail from now, so seed relative to the clock.
	now := time.Now().UTC()
	sched := model.EquipmentSchedule{
		EquipmentID:   eq.ID,
		StartDatetime: now.Add(-2 * time.Hour),
		EndDatetime:   now.Add(2 * time.Hour),
		Status:        model.ScheduleStatusActive,
		CreatedBy:     1,
	}
	require.NoError(t, gormDB.Create(&sched).Error)

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedules/dashboard/overview?date_range_days=7", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		DateRange struct {
			Days int `json:"days"`
		} `json:"date_range"`
		Metrics struct {
			TotalSchedules  int64 `json:"total_schedules"`
			ActiveSchedules int64 `json:"active_schedules"`
		} `json:"metrics"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 7, resp.DateRange.Days)
	assert.Equal(t, int64(1), resp.Metrics.TotalSchedules)
	assert.Equal(t, int64(1), resp.Metrics.ActiveSchedules)
}
