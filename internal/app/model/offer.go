package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer lifecycle.
const (
	OfferStatusActive     = "active"
	OfferStatusInactive   = "inactive"
	OfferStatusTerminated = "terminated"
)

// Offer is an advertiser campaign publishers can promote.
type Offer struct {
	ID        int64           `db:"id" gorm:"primaryKey;autoIncrement"`
	Name      string          `db:"name" gorm:"size:255;not null"`
	TargetURL string          `db:"target_url" gorm:"type:text;not null"`
	Payout    decimal.Decimal `db:"payout" gorm:"type:decimal(20,2);not null;default:0"`
	Currency  string          `db:"currency" gorm:"size:3;not null;default:USD"`
	Status    string          `db:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time       `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `db:"updated_at" gorm:"autoUpdateTime"`
}

// OfferPublisher carries the per-publisher commission rule for an offer.
// At most one row exists per (offer, publisher); absence means no custom
// commission is configured.
type OfferPublisher struct {
	ID                int64            `db:"id" gorm:"primaryKey;autoIncrement"`
	OfferID           int64            `db:"offer_id" gorm:"not null;uniqueIndex:ux_offer_publisher,priority:1"`
	PublisherID       string           `db:"publisher_id" gorm:"size:36;not null;uniqueIndex:ux_offer_publisher,priority:2"`
	CommissionPercent *decimal.Decimal `db:"commission_percent" gorm:"type:decimal(10,2)"`
	CommissionFixed   *decimal.Decimal `db:"commission_fixed" gorm:"type:decimal(20,2)"`
	CreatedAt         time.Time        `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time        `db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName keeps the join-table name explicit.
func (OfferPublisher) TableName() string { return "offer_publishers" }
