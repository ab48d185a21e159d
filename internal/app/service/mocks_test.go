package service

import (
	"context"
	"time"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
)

type mockPublisherRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*model.Publisher, error)
	getByEmailFn func(ctx context.Context, email string) (*model.Publisher, error)
}

func (m *mockPublisherRepo) GetByID(ctx context.Context, id string) (*model.Publisher, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrPublisherNotFound
}

func (m *mockPublisherRepo) GetByEmail(ctx context.Context, email string) (*model.Publisher, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrPublisherNotFound
}

type mockOfferRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*model.Offer, error)
	getRuleFn func(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrOfferNotFound
}

func (m *mockOfferRepo) GetCommissionRule(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error) {
	if m.getRuleFn != nil {
		return m.getRuleFn(ctx, offerID, publisherID)
	}
	return nil, repository.ErrCommissionRuleNotFound
}

type mockClickRepo struct {
	createFn         func(ctx context.Context, click *model.Click) error
	getByTokenFn     func(ctx context.Context, token string) (*model.Click, error)
	hasFingerprintFn func(ctx context.Context, publisherID string, offerID int64, ip, userAgent string, since time.Time) (bool, error)
}

func (m *mockClickRepo) Create(ctx context.Context, click *model.Click) error {
	if m.createFn != nil {
		return m.createFn(ctx, click)
	}
	return nil
}

func (m *mockClickRepo) GetByToken(ctx context.Context, token string) (*model.Click, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, repository.ErrClickNotFound
}

func (m *mockClickRepo) HasUniqueFingerprint(ctx context.Context, publisherID string, offerID int64, ip, userAgent string, since time.Time) (bool, error) {
	if m.hasFingerprintFn != nil {
		return m.hasFingerprintFn(ctx, publisherID, offerID, ip, userAgent, since)
	}
	return false, nil
}

type mockLinkRepo struct {
	createFn          func(ctx context.Context, link *model.Link) error
	getByIDFn         func(ctx context.Context, id string) (*model.Link, error)
	listByPublisherFn func(ctx context.Context, publisherID string, limit, offset int) ([]model.Link, error)
	addCountsFn       func(ctx context.Context, id string, clicks, conversions int64) error
}

func (m *mockLinkRepo) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepo) GetByID(ctx context.Context, id string) (*model.Link, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepo) ListByPublisher(ctx context.Context, publisherID string, limit, offset int) ([]model.Link, error) {
	if m.listByPublisherFn != nil {
		return m.listByPublisherFn(ctx, publisherID, limit, offset)
	}
	return nil, nil
}

func (m *mockLinkRepo) AddCounts(ctx context.Context, id string, clicks, conversions int64) error {
	if m.addCountsFn != nil {
		return m.addCountsFn(ctx, id, clicks, conversions)
	}
	return nil
}

type mockConversionRepo struct {
	createFn func(ctx context.Context, conv *model.Conversion) error
}

func (m *mockConversionRepo) Create(ctx context.Context, conv *model.Conversion) error {
	if m.createFn != nil {
		return m.createFn(ctx, conv)
	}
	return nil
}
