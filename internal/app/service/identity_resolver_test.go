package service

import (
	"context"
	"errors"
	"testing"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
)

func TestIdentityResolver_EmailLookup(t *testing.T) {
	repo := &mockPublisherRepo{
		getByEmailFn: func(ctx context.Context, email string) (*model.Publisher, error) {
			if email != "alice@example.com" {
				t.Fatalf("unexpected email %q", email)
			}
			return &model.Publisher{ID: "pub-1", Email: email}, nil
		},
	}

	r := NewIdentityResolver(repo)
	id, err := r.Resolve(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if id != "pub-1" {
		t.Fatalf("expected pub-1, got %s", id)
	}
}

func TestIdentityResolver_CanonicalIDPassthrough(t *testing.T) {
	repo := &mockPublisherRepo{
		getByEmailFn: func(ctx context.Context, email string) (*model.Publisher, error) {
			t.Fatal("no lookup expected for a canonical ID")
			return nil, nil
		},
	}

	r := NewIdentityResolver(repo)
	id, err := r.Resolve(context.Background(), "pub-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if id != "pub-1" {
		t.Fatalf("expected passthrough, got %s", id)
	}
}

func TestIdentityResolver_EmailAndIDAgree(t *testing.T) {
	repo := &mockPublisherRepo{
		getByEmailFn: func(ctx context.Context, email string) (*model.Publisher, error) {
			return &model.Publisher{ID: "pub-1", Email: email}, nil
		},
	}

	r := NewIdentityResolver(repo)
	byEmail, err := r.Resolve(context.Background(), "pub@example.com")
	if err != nil {
		t.Fatalf("Resolve by email: %v", err)
	}
	byID, err := r.Resolve(context.Background(), byEmail)
	if err != nil {
		t.Fatalf("Resolve by ID: %v", err)
	}
	if byEmail != byID {
		t.Fatalf("expected identical publisher IDs, got %s and %s", byEmail, byID)
	}
}

func TestIdentityResolver_UnknownEmail(t *testing.T) {
	r := NewIdentityResolver(&mockPublisherRepo{})
	_, err := r.Resolve(context.Background(), "nobody@example.com")
	if !errors.Is(err, repository.ErrPublisherNotFound) {
		t.Fatalf("expected ErrPublisherNotFound, got %v", err)
	}
}

func TestIdentityResolver_EmptyIdentifier(t *testing.T) {
	r := NewIdentityResolver(&mockPublisherRepo{})
	_, err := r.Resolve(context.Background(), "")
	if !errors.Is(err, ErrMissingPublisher) {
		t.Fatalf("expected ErrMissingPublisher, got %v", err)
	}
}
