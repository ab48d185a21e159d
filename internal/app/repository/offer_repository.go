package repository

import (
	"context"
	"errors"

	"github.com/linkmint/linkmint/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrOfferNotFound signals that the referenced offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrCommissionRuleNotFound signals that no offer-publisher rule is configured.
	ErrCommissionRuleNotFound = errors.New("commission rule not found")
)

// OfferRepository defines the data access contract for offers and their
// per-publisher commission rules.
type OfferRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Offer, error)
	GetCommissionRule(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error)
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository returns a GORM-backed OfferRepository.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	var offer model.Offer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) GetCommissionRule(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error) {
	var rule model.OfferPublisher
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND publisher_id = ?", offerID, publisherID).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}
