package model

import "time"

// Click is an immutable event record of a visit through a tracking link.
// IsUnique is decided once at creation and never mutated afterwards.
type Click struct {
	ID          int64     `db:"id" gorm:"primaryKey;autoIncrement"`
	Token       string    `db:"token" gorm:"size:36;not null;uniqueIndex"`
	PublisherID string    `db:"publisher_id" gorm:"size:36;not null;index:idx_click_fingerprint,priority:1"`
	OfferID     int64     `db:"offer_id" gorm:"not null;index:idx_click_fingerprint,priority:2"`
	LinkID      *string   `db:"link_id" gorm:"size:36;index"`
	IP          string    `db:"ip" gorm:"size:64;not null"`
	UserAgent   string    `db:"user_agent" gorm:"size:512"`
	IsUnique    bool      `db:"is_unique" gorm:"not null"`
	CreatedAt   time.Time `db:"created_at" gorm:"autoCreateTime;index"`
}
