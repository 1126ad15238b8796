package model

import "time"

// PushSubscription holds a browser push subscription for schedule event
// notifications, mapped to the equipment units the subscriber follows.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Equipment []Equipment `gorm:"many2many:subscription_equipment_mapping;"`
}
