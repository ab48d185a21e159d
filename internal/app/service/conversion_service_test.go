package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func clickRepoWith(click *model.Click) *mockClickRepo {
	return &mockClickRepo{
		getByTokenFn: func(ctx context.Context, token string) (*model.Click, error) {
			if click != nil && token == click.Token {
				return click, nil
			}
			return nil, repository.ErrClickNotFound
		},
	}
}

func offerRepoWith(offer *model.Offer, rule *model.OfferPublisher) *mockOfferRepo {
	return &mockOfferRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Offer, error) {
			if offer != nil && id == offer.ID {
				return offer, nil
			}
			return nil, repository.ErrOfferNotFound
		},
		getRuleFn: func(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error) {
			if rule != nil && offerID == rule.OfferID && publisherID == rule.PublisherID {
				return rule, nil
			}
			return nil, repository.ErrCommissionRuleNotFound
		},
	}
}

func newConversionService(clicks *mockClickRepo, links *mockLinkRepo, offers *mockOfferRepo, convs *mockConversionRepo) ConversionService {
	return NewConversionService(ConversionServiceDeps{
		Clicks:      clicks,
		Links:       links,
		Offers:      offers,
		Conversions: convs,
	})
}

func TestAttributeByToken_Success(t *testing.T) {
	pct := decimal.NewFromInt(10)
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("50.00"), Status: model.OfferStatusActive}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}

	var persisted *model.Conversion
	convs := &mockConversionRepo{
		createFn: func(ctx context.Context, conv *model.Conversion) error {
			persisted = conv
			return nil
		},
	}

	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, offerRepoWith(offer, rule), convs)
	amount := decimal.RequireFromString("100.00")
	conv, err := svc.AttributeByToken(context.Background(), TokenConversionInput{
		Token:  "tok-1",
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("AttributeByToken returned error: %v", err)
	}

	if persisted == nil {
		t.Fatal("expected the conversion to be persisted")
	}
	if conv.ClickToken == nil || *conv.ClickToken != "tok-1" {
		t.Fatalf("expected click token to be carried, got %v", conv.ClickToken)
	}
	if conv.PublisherID != "pub-1" || conv.OfferID != 42 {
		t.Fatalf("unexpected attribution: %+v", conv)
	}
	if !conv.Amount.Equal(amount) {
		t.Fatalf("expected amount 100.00, got %s", conv.Amount.String())
	}
	if !conv.CommissionAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected commission 10.00, got %s", conv.CommissionAmount.String())
	}
	if conv.Status != model.ConversionStatusPending {
		t.Fatalf("expected pending status, got %s", conv.Status)
	}
}

func TestAttributeByToken_AmountDefaultsToPayout(t *testing.T) {
	pct := decimal.NewFromInt(10)
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("50.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}

	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, offerRepoWith(offer, rule), &mockConversionRepo{})
	conv, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1"})
	if err != nil {
		t.Fatalf("AttributeByToken returned error: %v", err)
	}
	if !conv.Amount.Equal(offer.Payout) {
		t.Fatalf("expected payout as amount, got %s", conv.Amount.String())
	}
	if !conv.CommissionAmount.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected commission 5.00, got %s", conv.CommissionAmount.String())
	}
}

func TestAttributeByToken_UnknownToken(t *testing.T) {
	convs := &mockConversionRepo{
		createFn: func(ctx context.Context, conv *model.Conversion) error {
			t.Fatal("nothing must be written for an unknown token")
			return nil
		},
	}

	svc := newConversionService(clickRepoWith(nil), &mockLinkRepo{}, &mockOfferRepo{}, convs)
	_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "ghost"})
	if !errors.Is(err, repository.ErrClickNotFound) {
		t.Fatalf("expected ErrClickNotFound, got %v", err)
	}
}

func TestAttributeByToken_MissingToken(t *testing.T) {
	svc := newConversionService(&mockClickRepo{}, &mockLinkRepo{}, &mockOfferRepo{}, &mockConversionRepo{})
	_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAttributeByToken_OfferMismatch(t *testing.T) {
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, &mockOfferRepo{}, &mockConversionRepo{})
	_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1", OfferID: 7})
	if !errors.Is(err, ErrOfferMismatch) {
		t.Fatalf("expected ErrOfferMismatch, got %v", err)
	}
}

func TestAttributeByToken_DuplicateConflict(t *testing.T) {
	pct := decimal.NewFromInt(10)
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("50.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}

	convs := &mockConversionRepo{
		createFn: func(ctx context.Context, conv *model.Conversion) error {
			return repository.ErrDuplicateConversion
		},
	}

	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, offerRepoWith(offer, rule), convs)
	_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1"})
	if !errors.Is(err, repository.ErrDuplicateConversion) {
		t.Fatalf("expected ErrDuplicateConversion, got %v", err)
	}
}

// TestAttributeByToken_ConcurrentDuplicates emulates the datastore unique
// index under concurrent submission: exactly one of N identical signals wins.
func TestAttributeByToken_ConcurrentDuplicates(t *testing.T) {
	pct := decimal.NewFromInt(10)
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("50.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}

	var mu sync.Mutex
	inserted := make(map[string]bool)
	convs := &mockConversionRepo{
		createFn: func(ctx context.Context, conv *model.Conversion) error {
			key := fmt.Sprintf("%s|%d", *conv.ClickToken, conv.OfferID)
			mu.Lock()
			defer mu.Unlock()
			if inserted[key] {
				return repository.ErrDuplicateConversion
			}
			inserted[key] = true
			return nil
		},
	}

	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, offerRepoWith(offer, rule), convs)

	const n = 16
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, repository.ErrDuplicateConversion):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Fatalf("expected %d conflicts, got %d", n-1, conflicts)
	}
}

func TestAttributeByToken_LinkOverrideWins(t *testing.T) {
	linkPct := decimal.NewFromInt(20)
	opPct := decimal.NewFromInt(10)
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1", LinkID: strPtr("link-1")}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("100.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &opPct}
	links := &mockLinkRepo{
		getByIDFn: func(ctx context.Context, id string) (*model.Link, error) {
			return &model.Link{ID: id, OfferID: 42, PublisherID: "pub-1", CommissionPercent: &linkPct}, nil
		},
	}

	svc := newConversionService(clickRepoWith(click), links, offerRepoWith(offer, rule), &mockConversionRepo{})
	conv, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1"})
	if err != nil {
		t.Fatalf("AttributeByToken returned error: %v", err)
	}
	if !conv.CommissionAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected link override commission 20.00, got %s", conv.CommissionAmount.String())
	}
}

func TestAttributeByToken_NoRuleConfigured(t *testing.T) {
	click := &model.Click{Token: "tok-1", OfferID: 42, PublisherID: "pub-1"}
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("50.00")}

	svc := newConversionService(clickRepoWith(click), &mockLinkRepo{}, offerRepoWith(offer, nil), &mockConversionRepo{})
	_, err := svc.AttributeByToken(context.Background(), TokenConversionInput{Token: "tok-1"})
	if !errors.Is(err, repository.ErrCommissionRuleNotFound) {
		t.Fatalf("expected ErrCommissionRuleNotFound, got %v", err)
	}
}

func TestAttributeByLink_Success(t *testing.T) {
	pct := decimal.NewFromInt(15)
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("200.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}
	links := &mockLinkRepo{
		getByIDFn: func(ctx context.Context, id string) (*model.Link, error) {
			if id != "link-1" {
				return nil, repository.ErrLinkNotFound
			}
			return &model.Link{ID: id, OfferID: 42, PublisherID: "pub-1"}, nil
		},
	}

	svc := newConversionService(&mockClickRepo{}, links, offerRepoWith(offer, rule), &mockConversionRepo{})
	conv, err := svc.AttributeByLink(context.Background(), LinkConversionInput{LinkID: "link-1"})
	if err != nil {
		t.Fatalf("AttributeByLink returned error: %v", err)
	}

	if !conv.Amount.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected amount 200.00, got %s", conv.Amount.String())
	}
	if !conv.CommissionAmount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected commission 30.00, got %s", conv.CommissionAmount.String())
	}
	if conv.ClickToken != nil {
		t.Fatal("expected no click token on the webhook path")
	}
	if conv.LinkID == nil || *conv.LinkID != "link-1" {
		t.Fatalf("expected link id to be carried, got %v", conv.LinkID)
	}
}

func TestAttributeByLink_FixedCutFallback(t *testing.T) {
	fixed := decimal.RequireFromString("12.50")
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("200.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionFixed: &fixed}
	links := &mockLinkRepo{
		getByIDFn: func(ctx context.Context, id string) (*model.Link, error) {
			return &model.Link{ID: id, OfferID: 42, PublisherID: "pub-1"}, nil
		},
	}

	svc := newConversionService(&mockClickRepo{}, links, offerRepoWith(offer, rule), &mockConversionRepo{})
	conv, err := svc.AttributeByLink(context.Background(), LinkConversionInput{LinkID: "link-1"})
	if err != nil {
		t.Fatalf("AttributeByLink returned error: %v", err)
	}
	if !conv.CommissionAmount.Equal(fixed) {
		t.Fatalf("expected fixed cut 12.50, got %s", conv.CommissionAmount.String())
	}
}

func TestAttributeByLink_Validation(t *testing.T) {
	svc := newConversionService(&mockClickRepo{}, &mockLinkRepo{}, &mockOfferRepo{}, &mockConversionRepo{})

	_, err := svc.AttributeByLink(context.Background(), LinkConversionInput{})
	if !errors.Is(err, ErrMissingLink) {
		t.Fatalf("expected ErrMissingLink, got %v", err)
	}

	_, err = svc.AttributeByLink(context.Background(), LinkConversionInput{LinkID: "ghost"})
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestAttributeByLink_IdempotencyKeyCarried(t *testing.T) {
	pct := decimal.NewFromInt(15)
	offer := &model.Offer{ID: 42, Payout: decimal.RequireFromString("200.00")}
	rule := &model.OfferPublisher{OfferID: 42, PublisherID: "pub-1", CommissionPercent: &pct}
	links := &mockLinkRepo{
		getByIDFn: func(ctx context.Context, id string) (*model.Link, error) {
			return &model.Link{ID: id, OfferID: 42, PublisherID: "pub-1"}, nil
		},
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	convs := &mockConversionRepo{
		createFn: func(ctx context.Context, conv *model.Conversion) error {
			if conv.IdempotencyKey == nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[*conv.IdempotencyKey] {
				return repository.ErrDuplicateConversion
			}
			seen[*conv.IdempotencyKey] = true
			return nil
		},
	}

	svc := newConversionService(&mockClickRepo{}, links, offerRepoWith(offer, rule), convs)

	if _, err := svc.AttributeByLink(context.Background(), LinkConversionInput{LinkID: "link-1", IdempotencyKey: "evt-1"}); err != nil {
		t.Fatalf("first webhook returned error: %v", err)
	}
	_, err := svc.AttributeByLink(context.Background(), LinkConversionInput{LinkID: "link-1", IdempotencyKey: "evt-1"})
	if !errors.Is(err, repository.ErrDuplicateConversion) {
		t.Fatalf("expected replay to conflict, got %v", err)
	}
}
