package service

import (
	"context"
	"errors"
	"testing"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
)

func knownPublisherRepo() *mockPublisherRepo {
	return &mockPublisherRepo{
		getByIDFn: func(ctx context.Context, id string) (*model.Publisher, error) {
			if id != "pub-1" {
				return nil, repository.ErrPublisherNotFound
			}
			return &model.Publisher{ID: id, Status: model.PublisherStatusApproved}, nil
		},
		getByEmailFn: func(ctx context.Context, email string) (*model.Publisher, error) {
			return &model.Publisher{ID: "pub-1", Email: email}, nil
		},
	}
}

func TestLinkService_CreateLink(t *testing.T) {
	offers := &mockOfferRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Offer, error) {
			return &model.Offer{ID: id, Status: model.OfferStatusActive}, nil
		},
	}
	links := &mockLinkRepo{
		createFn: func(ctx context.Context, link *model.Link) error {
			if link.ID == "" {
				t.Fatal("expected a generated link id")
			}
			if link.Name != "default" {
				t.Fatalf("expected default variant name, got %q", link.Name)
			}
			return nil
		},
	}
	pubs := knownPublisherRepo()

	svc := NewLinkService(links, offers, pubs, NewIdentityResolver(pubs))
	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OfferID:      42,
		PublisherRef: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.PublisherID != "pub-1" {
		t.Fatalf("expected resolved publisher, got %s", link.PublisherID)
	}
}

func TestLinkService_CreateLink_UnknownOffer(t *testing.T) {
	pubs := knownPublisherRepo()
	svc := NewLinkService(&mockLinkRepo{}, &mockOfferRepo{}, pubs, NewIdentityResolver(pubs))

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OfferID:      99,
		PublisherRef: "pub-1",
	})
	if !errors.Is(err, repository.ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestLinkService_CreateLink_UnknownPublisher(t *testing.T) {
	pubs := &mockPublisherRepo{}
	svc := NewLinkService(&mockLinkRepo{}, &mockOfferRepo{}, pubs, NewIdentityResolver(pubs))

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OfferID:      42,
		PublisherRef: "ghost-id",
	})
	if !errors.Is(err, repository.ErrPublisherNotFound) {
		t.Fatalf("expected ErrPublisherNotFound, got %v", err)
	}
}

func TestLinkService_ListLinks(t *testing.T) {
	pubs := knownPublisherRepo()
	links := &mockLinkRepo{
		listByPublisherFn: func(ctx context.Context, publisherID string, limit, offset int) ([]model.Link, error) {
			if publisherID != "pub-1" {
				t.Fatalf("expected resolved publisher, got %s", publisherID)
			}
			return []model.Link{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	svc := NewLinkService(links, &mockOfferRepo{}, pubs, NewIdentityResolver(pubs))
	list, err := svc.ListLinks(context.Background(), "alice@example.com", 10, 0)
	if err != nil {
		t.Fatalf("ListLinks returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 links, got %d", len(list))
	}
}
