package model

import "time"

// Operator is the user assigned to run the equipment during a schedule.
// Identity and authorization live in a separate subsystem; only the display
// fields needed for joins are mirrored here.
type Operator struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"size:100" json:"first_name,omitempty"`
	LastName  string    `gorm:"size:100" json:"last_name,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
