package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conversion status. Rows are created pending; later status adjustments are
// handled by external tooling, never by this service.
const ConversionStatusPending = "pending"

// Conversion records that a click resulted in a billable event. The unique
// index over (click_token, offer_id) makes attribution insert-or-fail: a
// second signal for the same pair is rejected by the datastore, not by a
// read-then-write check.
type Conversion struct {
	ID          int64   `db:"id" gorm:"primaryKey;autoIncrement"`
	ClickToken  *string `db:"click_token" gorm:"size:36;uniqueIndex:ux_conversion_click_offer,priority:1"`
	OfferID     int64   `db:"offer_id" gorm:"not null;uniqueIndex:ux_conversion_click_offer,priority:2"`
	PublisherID string  `db:"publisher_id" gorm:"size:36;not null;index"`
	LinkID      *string `db:"link_id" gorm:"size:36;index"`

	Amount           decimal.Decimal `db:"amount" gorm:"type:decimal(20,2);not null;default:0"`
	CommissionAmount decimal.Decimal `db:"commission_amount" gorm:"type:decimal(20,2);not null;default:0"`
	Status           string          `db:"status" gorm:"size:16;not null;default:pending"`

	// IdempotencyKey lets webhook callers make their own retries safe; it is
	// unique when present and absent otherwise.
	IdempotencyKey *string `db:"idempotency_key" gorm:"size:128;uniqueIndex"`

	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime;index"`
}
