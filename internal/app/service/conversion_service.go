package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConversionService attributes conversion signals back to their originating
// click or tracking link and computes the commission owed. Both paths resolve
// the commission rule with the same precedence and rely on the datastore's
// unique indexes for deduplication.
type ConversionService interface {
	AttributeByToken(ctx context.Context, input TokenConversionInput) (*model.Conversion, error)
	AttributeByLink(ctx context.Context, input LinkConversionInput) (*model.Conversion, error)
}

// TokenConversionInput is the direct postback signal, keyed by the
// correlation token minted at click time.
type TokenConversionInput struct {
	Token string
	// OfferID is optional; when set it must match the click's offer.
	OfferID int64
	// Amount overrides the offer payout as the revenue base when set.
	Amount *decimal.Decimal
}

// LinkConversionInput is the webhook signal, keyed by the tracking link.
type LinkConversionInput struct {
	LinkID string
	// IdempotencyKey is optional; when the caller supplies one, retries of
	// the same webhook are rejected as duplicates.
	IdempotencyKey string
}

// ConversionServiceDeps groups the collaborators of the attributor.
type ConversionServiceDeps struct {
	Logger      *zap.Logger
	Clicks      repository.ClickRepository
	Links       repository.LinkRepository
	Offers      repository.OfferRepository
	Conversions repository.ConversionRepository
	Events      EventPublisher
}

type conversionService struct {
	logger      *zap.Logger
	clicks      repository.ClickRepository
	links       repository.LinkRepository
	offers      repository.OfferRepository
	conversions repository.ConversionRepository
	events      EventPublisher
}

// NewConversionService returns the conversion attributor implementation.
func NewConversionService(deps ConversionServiceDeps) ConversionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &conversionService{
		logger:      logger,
		clicks:      deps.Clicks,
		links:       deps.Links,
		offers:      deps.Offers,
		conversions: deps.Conversions,
		events:      deps.Events,
	}
}

func (s *conversionService) AttributeByToken(ctx context.Context, input TokenConversionInput) (*model.Conversion, error) {
	if input.Token == "" {
		return nil, ErrMissingToken
	}

	click, err := s.clicks.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if input.OfferID != 0 && input.OfferID != click.OfferID {
		return nil, ErrOfferMismatch
	}

	offer, err := s.offers.GetByID(ctx, click.OfferID)
	if err != nil {
		return nil, err
	}

	// The link override only applies when the click carried a link; a link
	// deleted since the click degrades to the offer-publisher rule.
	var link *model.Link
	if click.LinkID != nil {
		link, err = s.links.GetByID(ctx, *click.LinkID)
		if err != nil && !errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
	}

	rule, err := s.resolveRule(ctx, link, click.OfferID, click.PublisherID)
	if err != nil {
		return nil, err
	}

	amount := offer.Payout
	if input.Amount != nil {
		amount = *input.Amount
	}

	token := click.Token
	conv := &model.Conversion{
		ClickToken:       &token,
		OfferID:          click.OfferID,
		PublisherID:      click.PublisherID,
		LinkID:           click.LinkID,
		Amount:           amount,
		CommissionAmount: Commission(amount, rule),
		Status:           model.ConversionStatusPending,
	}

	return s.persist(ctx, conv)
}

func (s *conversionService) AttributeByLink(ctx context.Context, input LinkConversionInput) (*model.Conversion, error) {
	if input.LinkID == "" {
		return nil, ErrMissingLink
	}

	link, err := s.links.GetByID(ctx, input.LinkID)
	if err != nil {
		return nil, err
	}

	offer, err := s.offers.GetByID(ctx, link.OfferID)
	if err != nil {
		return nil, err
	}

	rule, err := s.resolveRule(ctx, link, link.OfferID, link.PublisherID)
	if err != nil {
		return nil, err
	}

	linkID := link.ID
	conv := &model.Conversion{
		OfferID:          link.OfferID,
		PublisherID:      link.PublisherID,
		LinkID:           &linkID,
		Amount:           offer.Payout,
		CommissionAmount: Commission(offer.Payout, rule),
		Status:           model.ConversionStatusPending,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		conv.IdempotencyKey = &key
	}

	return s.persist(ctx, conv)
}

// resolveRule loads the offer-publisher rule and applies the shared
// precedence. Absence of any configured rate rejects the conversion.
func (s *conversionService) resolveRule(ctx context.Context, link *model.Link, offerID int64, publisherID string) (CommissionRule, error) {
	opRule, err := s.offers.GetCommissionRule(ctx, offerID, publisherID)
	if err != nil && !errors.Is(err, repository.ErrCommissionRuleNotFound) {
		return CommissionRule{}, err
	}

	rule, ok := ResolveCommissionRule(link, opRule)
	if !ok {
		return CommissionRule{}, repository.ErrCommissionRuleNotFound
	}
	return rule, nil
}

func (s *conversionService) persist(ctx context.Context, conv *model.Conversion) (*model.Conversion, error) {
	if err := s.conversions.Create(ctx, conv); err != nil {
		if errors.Is(err, repository.ErrDuplicateConversion) {
			return nil, err
		}
		return nil, fmt.Errorf("persist conversion: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishConversion(conv); err != nil {
			s.logger.Warn("failed to publish conversion event",
				zap.Int64("conversion_id", conv.ID), zap.Error(err))
		}
	}

	s.logger.Debug("conversion recorded",
		zap.Int64("conversion_id", conv.ID),
		zap.Int64("offer_id", conv.OfferID),
		zap.String("publisher_id", conv.PublisherID),
		zap.String("commission", conv.CommissionAmount.String()),
	)

	return conv, nil
}
