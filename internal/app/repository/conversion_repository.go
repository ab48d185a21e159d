package repository

import (
	"context"
	"errors"

	"github.com/linkmint/linkmint/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateConversion signals that a conversion for the same
	// (click token, offer) pair or idempotency key already exists.
	ErrDuplicateConversion = errors.New("conversion already recorded")
)

// ConversionRepository defines the data access contract for conversions.
// Create is insert-or-fail: deduplication rides on the unique indexes over
// (click_token, offer_id) and idempotency_key, so two concurrent signals for
// the same pair cannot both commit.
type ConversionRepository interface {
	Create(ctx context.Context, conv *model.Conversion) error
}

type conversionRepository struct {
	db *gorm.DB
}

// NewConversionRepository returns a GORM-backed ConversionRepository.
// Requires a gorm.DB opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
func NewConversionRepository(db *gorm.DB) ConversionRepository {
	return &conversionRepository{db: db}
}

func (r *conversionRepository) Create(ctx context.Context, conv *model.Conversion) error {
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateConversion
		}
		return err
	}
	return nil
}
