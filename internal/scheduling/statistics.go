package scheduling

import (
	"context"
	"time"

	"equipment-scheduling-backend/internal/model"
)

// Statistics summarizes scheduling activity for one equipment unit over a
// window.
type Statistics struct {
	EquipmentID             int64     `json:"equipment_id"`
	EquipmentName           string    `json:"equipment_name"`
	DateRangeStart          time.Time `json:"date_range_start"`
	DateRangeEnd            time.Time `json:"date_range_end"`
	TotalSchedules          int       `json:"total_schedules"`
	TotalScheduledHours     float64   `json:"total_scheduled_hours"`
	AverageScheduleDuration float64   `json:"average_schedule_duration"`
	UtilizationRate         float64   `json:"utilization_rate"`
	MostCommonProjectID     *int64    `json:"most_common_project_id,omitempty"`
	MostCommonProject       string    `json:"most_common_project,omitempty"`
}

// Statistics counts schedules whose bounds fall fully inside [start, end].
// Strict containment, unlike Availability's intersection/clipping; the
// asymmetry is carried over from the system this replaces so the two
// endpoints keep reporting the same numbers they always have.
func (s *Service) Statistics(ctx context.Context, equipmentID int64, start, end time.Time) (*Statistics, error) {
	eq, err := s.resolveEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.store.SchedulesContained(ctx, equipmentID, start, end, model.CountingStatuses())
	if err != nil {
		return nil, err
	}

	result := &Statistics{
		EquipmentID:    equipmentID,
		EquipmentName:  eq.Name,
		DateRangeStart: start,
		DateRangeEnd:   end,
		TotalSchedules: len(schedules),
	}
	if len(schedules) == 0 {
		return result, nil
	}

	projectCounts := make(map[int64]int)
	projectNames := make(map[int64]string)
	var totalHours float64
	for _, sched := range schedules {
		totalHours += sched.Duration().Hours()
		if sched.ProjectID != nil {
			projectCounts[*sched.ProjectID]++
			if sched.Project != nil {
				projectNames[*sched.ProjectID] = sched.Project.Name
			}
		}
	}

	result.TotalScheduledHours = round2(totalHours)
	result.AverageScheduleDuration = round2(totalHours / float64(len(schedules)))

	windowHours := end.Sub(start).Hours()
	if windowHours > 0 {
		result.UtilizationRate = round2(totalHours / windowHours * 100)
	}

	// Most frequent project, ties broken by lowest project id.
	var bestID int64
	bestCount := 0
	for id, count := range projectCounts {
		if count > bestCount || (count == bestCount && id < bestID) {
			bestID = id
			bestCount = count
		}
	}
	if bestCount > 0 {
		id := bestID
		result.MostCommonProjectID = &id
		result.MostCommonProject = projectNames[id]
	}
	return result, nil
}
