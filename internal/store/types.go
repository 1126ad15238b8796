package store

import "time"

// ScheduleFilter narrows a schedule listing. Zero/nil fields are ignored.
type ScheduleFilter struct {
	EquipmentID *int64
	ProjectID   *int64
	OperatorID  *int64
	Status      string
	StartDate   *time.Time // schedules starting at or after
	EndDate     *time.Time // schedules ending at or before
}

// PageRequest is offset pagination plus sort direction on start_datetime.
type PageRequest struct {
	Page          int
	PerPage       int
	SortAscending bool
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// OverviewRow aggregates scheduling activity over a trailing window for the
// dashboard endpoint.
type OverviewRow struct {
	TotalSchedules     int64
	EquipmentScheduled int64
	ActiveSchedules    int64
	UpcomingSchedules  int64
	AvgDurationHours   float64
}
