package model

import "time"

// Project is an informational reference on a schedule; the scheduler never
// validates project lifecycle.
type Project struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
