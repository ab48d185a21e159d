package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Link is a publisher's tracking handle for a specific offer. An optional
// commission percentage override takes precedence over the offer-publisher
// rule when a conversion is attributed through this link.
type Link struct {
	ID                string           `db:"id" gorm:"primaryKey;size:36"`
	OfferID           int64            `db:"offer_id" gorm:"not null;uniqueIndex:ux_link_variant,priority:1"`
	PublisherID       string           `db:"publisher_id" gorm:"size:36;not null;uniqueIndex:ux_link_variant,priority:2"`
	Name              string           `db:"name" gorm:"size:64;not null;default:default;uniqueIndex:ux_link_variant,priority:3"`
	CommissionPercent *decimal.Decimal `db:"commission_percent" gorm:"type:decimal(10,2)"`

	// Advisory counters maintained asynchronously by the stats consumer;
	// the click and conversion rows remain authoritative.
	ClickCount      int64 `db:"click_count" gorm:"not null;default:0"`
	ConversionCount int64 `db:"conversion_count" gorm:"not null;default:0"`

	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
