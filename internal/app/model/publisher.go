package model

import "time"

// Publisher approval lifecycle.
const (
	PublisherStatusPending  = "pending"
	PublisherStatusApproved = "approved"
	PublisherStatusRejected = "rejected"
)

// Publisher is an affiliate account that owns tracking links, clicks and
// conversions.
type Publisher struct {
	ID        string    `db:"id" gorm:"primaryKey;size:36"`
	Name      string    `db:"name" gorm:"size:128;not null"`
	Email     string    `db:"email" gorm:"size:255;not null;uniqueIndex"`
	Status    string    `db:"status" gorm:"size:16;not null;default:pending"`
	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
