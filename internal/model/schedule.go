package model

import "time"

// Schedule statuses. Cancelled and completed are terminal.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusActive    = "active"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"
)

// EquipmentSchedule is one reservation of an equipment unit for a time
// interval. Rows are append-only: cancellation flips status, never deletes.
type EquipmentSchedule struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	EquipmentID   int64     `gorm:"index;not null" json:"equipment_id"`
	ProjectID     *int64    `gorm:"index" json:"project_id,omitempty"`
	OperatorID    *int64    `gorm:"index" json:"operator_id,omitempty"`
	StartDatetime time.Time `gorm:"index;not null" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"index;not null" json:"end_datetime"`
	Status        string    `gorm:"size:20;not null;default:scheduled" json:"status"`
	Notes         string    `gorm:"size:1000" json:"notes,omitempty"`
	CreatedBy     int64     `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Equipment Equipment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Project   *Project  `json:"-"`
	Operator  *Operator `json:"-"`
}

// CountingStatuses returns the statuses that occupy the equipment; cancelled
// schedules never count.
func CountingStatuses() []string {
	return []string{ScheduleStatusScheduled, ScheduleStatusActive, ScheduleStatusCompleted}
}

// Duration returns the scheduled interval length.
func (s EquipmentSchedule) Duration() time.Duration {
	return s.EndDatetime.Sub(s.StartDatetime)
}
