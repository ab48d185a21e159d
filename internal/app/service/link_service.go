package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
	"github.com/shopspring/decimal"
)

// LinkService provisions and reads tracking links.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	GetLink(ctx context.Context, id string) (*model.Link, error)
	ListLinks(ctx context.Context, publisherRef string, limit, offset int) ([]model.Link, error)
}

// CreateLinkInput captures data required to create a tracking link.
type CreateLinkInput struct {
	OfferID int64
	// PublisherRef is a canonical publisher ID or email.
	PublisherRef string
	// Name distinguishes explicitly provisioned variants for the same
	// (offer, publisher) pair; empty means the default variant.
	Name string
	// CommissionPercent optionally overrides the offer-publisher rule.
	CommissionPercent *decimal.Decimal
}

type linkService struct {
	links      repository.LinkRepository
	offers     repository.OfferRepository
	publishers repository.PublisherRepository
	resolver   IdentityResolver
}

// NewLinkService returns a service implementation backed by the given
// repositories.
func NewLinkService(links repository.LinkRepository, offers repository.OfferRepository, publishers repository.PublisherRepository, resolver IdentityResolver) LinkService {
	return &linkService{
		links:      links,
		offers:     offers,
		publishers: publishers,
		resolver:   resolver,
	}
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if input.OfferID <= 0 {
		return nil, ErrMissingOffer
	}

	publisherID, err := s.resolver.Resolve(ctx, input.PublisherRef)
	if err != nil {
		return nil, err
	}
	// Unlike the click path, provisioning verifies the publisher up front so
	// a typoed canonical ID fails loudly instead of at click time.
	if _, err := s.publishers.GetByID(ctx, publisherID); err != nil {
		return nil, err
	}
	if _, err := s.offers.GetByID(ctx, input.OfferID); err != nil {
		return nil, err
	}

	link := &model.Link{
		ID:                uuid.NewString(),
		OfferID:           input.OfferID,
		PublisherID:       publisherID,
		Name:              input.Name,
		CommissionPercent: input.CommissionPercent,
	}
	if link.Name == "" {
		link.Name = "default"
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, id string) (*model.Link, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, publisherRef string, limit, offset int) ([]model.Link, error) {
	publisherID, err := s.resolver.Resolve(ctx, publisherRef)
	if err != nil {
		return nil, err
	}

	links, err := s.links.ListByPublisher(ctx, publisherID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}
