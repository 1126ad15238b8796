package model

import "time"

// Equipment statuses considered assignable for scheduling.
const (
	EquipmentStatusAvailable   = "available"
	EquipmentStatusInUse       = "in_use"
	EquipmentStatusMaintenance = "maintenance"
	EquipmentStatusRetired     = "retired"
)

// Equipment represents one unit of rentable equipment. Master data is owned
// by the fleet subsystem; the scheduler only reads it.
type Equipment struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Model         string    `gorm:"size:255" json:"model,omitempty"`
	Brand         string    `gorm:"size:255" json:"brand,omitempty"`
	SerialNumber  string    `gorm:"size:100;uniqueIndex" json:"serial_number,omitempty"`
	EquipmentType string    `gorm:"size:100" json:"equipment_type,omitempty"`
	Status        string    `gorm:"size:50;not null;default:available" json:"status"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Schedules []EquipmentSchedule `gorm:"foreignKey:EquipmentID" json:"-"`
}

// Assignable reports whether the equipment may receive new schedules.
func (e Equipment) Assignable() bool {
	return e.IsActive && (e.Status == EquipmentStatusAvailable || e.Status == EquipmentStatusInUse)
}
