package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
	"go.uber.org/zap"
)

// ClickService records click events and builds the advertiser redirect.
type ClickService interface {
	RecordClick(ctx context.Context, input RecordClickInput) (*RecordClickResult, error)
}

// RecordClickInput captures one incoming click request.
type RecordClickInput struct {
	// PublisherRef is the raw publisher identifier: canonical ID or email.
	PublisherRef string
	OfferID      int64
	// LinkID is optional; empty means the click came without a tracking link.
	LinkID    string
	IP        string
	UserAgent string
	// SeenMarkerValid reports whether the caller presented a valid seen
	// marker for the canonical publisher and this offer. It is invoked after
	// identity resolution; a true result short-circuits the dedup checks.
	// Nil means no marker was presented.
	SeenMarkerValid func(publisherID string) bool
}

// RecordClickResult is the outcome of a recorded click.
type RecordClickResult struct {
	Click       *model.Click
	RedirectURL string
	// SetSeenMarker asks the handler to drop the seen cookie on the response.
	SetSeenMarker bool
}

// ClickServiceDeps groups the collaborators of the click recorder.
type ClickServiceDeps struct {
	Logger      *zap.Logger
	Resolver    IdentityResolver
	Offers      repository.OfferRepository
	Clicks      repository.ClickRepository
	Dedup       *DedupCache
	Events      EventPublisher
	DedupWindow time.Duration
}

type clickService struct {
	logger      *zap.Logger
	resolver    IdentityResolver
	offers      repository.OfferRepository
	clicks      repository.ClickRepository
	dedup       *DedupCache
	events      EventPublisher
	dedupWindow time.Duration
}

// NewClickService returns the click recorder implementation.
func NewClickService(deps ClickServiceDeps) ClickService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window := deps.DedupWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &clickService{
		logger:      logger,
		resolver:    deps.Resolver,
		offers:      deps.Offers,
		clicks:      deps.Clicks,
		dedup:       deps.Dedup,
		events:      deps.Events,
		dedupWindow: window,
	}
}

func (s *clickService) RecordClick(ctx context.Context, input RecordClickInput) (*RecordClickResult, error) {
	if input.PublisherRef == "" {
		return nil, ErrMissingPublisher
	}
	if input.OfferID <= 0 {
		return nil, ErrMissingOffer
	}

	publisherID, err := s.resolver.Resolve(ctx, input.PublisherRef)
	if err != nil {
		return nil, err
	}

	// The offer is loaded before the click write so a missing offer fails the
	// request cleanly instead of stranding a click behind a dead redirect.
	offer, err := s.offers.GetByID(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.Status == model.OfferStatusTerminated {
		return nil, ErrOfferNotActive
	}

	isUnique, err := s.decideUnique(ctx, publisherID, input)
	if err != nil {
		return nil, fmt.Errorf("uniqueness check: %w", err)
	}

	click := &model.Click{
		Token:       uuid.NewString(),
		PublisherID: publisherID,
		OfferID:     input.OfferID,
		IP:          input.IP,
		UserAgent:   input.UserAgent,
		IsUnique:    isUnique,
	}
	if input.LinkID != "" {
		linkID := input.LinkID
		click.LinkID = &linkID
	}

	// The click write is unconditional; uniqueness only affects the flag.
	if err := s.clicks.Create(ctx, click); err != nil {
		return nil, fmt.Errorf("persist click: %w", err)
	}

	if s.dedup != nil {
		s.dedup.MarkSeen(ctx, Fingerprint(publisherID, input.OfferID, input.IP, input.UserAgent))
	}

	if s.events != nil {
		if err := s.events.PublishClick(click); err != nil {
			s.logger.Warn("failed to publish click event",
				zap.String("token", click.Token), zap.Error(err))
		}
	}

	redirect, err := buildRedirectURL(offer.TargetURL, click.Token, input.LinkID)
	if err != nil {
		return nil, fmt.Errorf("build redirect url: %w", err)
	}

	s.logger.Debug("click recorded",
		zap.String("token", click.Token),
		zap.String("publisher_id", publisherID),
		zap.Int64("offer_id", input.OfferID),
		zap.Bool("is_unique", isUnique),
	)

	return &RecordClickResult{
		Click:         click,
		RedirectURL:   redirect,
		SetSeenMarker: isUnique,
	}, nil
}

// decideUnique applies the best-effort uniqueness heuristic: seen cookie,
// then the shared redis marker, then the local bloom filter, then the
// authoritative fingerprint query over the rolling window. Two concurrent
// identical requests may both come out unique.
func (s *clickService) decideUnique(ctx context.Context, publisherID string, input RecordClickInput) (bool, error) {
	if input.SeenMarkerValid != nil && input.SeenMarkerValid(publisherID) {
		return false, nil
	}

	fp := Fingerprint(publisherID, input.OfferID, input.IP, input.UserAgent)
	if s.dedup != nil {
		if s.dedup.SeenShared(ctx, fp) {
			return false, nil
		}
		if s.dedup.SharedEnabled() && !s.dedup.SeenLocal(fp) {
			// Definitely never recorded by this process and absent from the
			// shared marker: treat as unique without touching the database.
			return true, nil
		}
	}

	seen, err := s.clicks.HasUniqueFingerprint(ctx, publisherID, input.OfferID,
		input.IP, input.UserAgent, time.Now().Add(-s.dedupWindow))
	if err != nil {
		return false, err
	}
	return !seen, nil
}

func buildRedirectURL(target, token, linkID string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("ref", token)
	if linkID != "" {
		q.Set("link", linkID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
