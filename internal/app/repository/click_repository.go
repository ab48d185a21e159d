package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linkmint/linkmint/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrClickNotFound signals that no click matches the correlation token.
	ErrClickNotFound = errors.New("click not found")
)

// ClickRepository defines the data access contract for click events. Clicks
// are append-only: there is deliberately no update or delete operation.
type ClickRepository interface {
	Create(ctx context.Context, click *model.Click) error
	GetByToken(ctx context.Context, token string) (*model.Click, error)
	HasUniqueFingerprint(ctx context.Context, publisherID string, offerID int64, ip, userAgent string, since time.Time) (bool, error)
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository returns a GORM-backed ClickRepository.
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, click *model.Click) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *clickRepository) GetByToken(ctx context.Context, token string) (*model.Click, error) {
	var click model.Click
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClickNotFound
		}
		return nil, err
	}
	return &click, nil
}

// HasUniqueFingerprint reports whether a click already flagged unique exists
// for the exact (publisher, offer, ip, user agent) combination inside the
// rolling window starting at since.
func (r *clickRepository) HasUniqueFingerprint(ctx context.Context, publisherID string, offerID int64, ip, userAgent string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Click{}).
		Where("publisher_id = ? AND offer_id = ? AND ip = ? AND user_agent = ? AND is_unique = ? AND created_at >= ?",
			publisherID, offerID, ip, userAgent, true, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
