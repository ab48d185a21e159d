package repository

import (
	"context"
	"errors"

	"github.com/linkmint/linkmint/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrPublisherNotFound signals that the referenced publisher does not exist.
	ErrPublisherNotFound = errors.New("publisher not found")
)

// PublisherRepository defines the data access contract for publishers.
type PublisherRepository interface {
	GetByID(ctx context.Context, id string) (*model.Publisher, error)
	GetByEmail(ctx context.Context, email string) (*model.Publisher, error)
}

type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository returns a GORM-backed PublisherRepository.
func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) GetByID(ctx context.Context, id string) (*model.Publisher, error) {
	var pub model.Publisher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &pub, nil
}

func (r *publisherRepository) GetByEmail(ctx context.Context, email string) (*model.Publisher, error) {
	var pub model.Publisher
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&pub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &pub, nil
}
