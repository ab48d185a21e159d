package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkmint/linkmint/internal/app/repository"
)

// IdentityResolver maps a publisher-supplied identifier to a canonical
// publisher ID. Read-only, safe for concurrent use.
type IdentityResolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

type identityResolver struct {
	publishers repository.PublisherRepository
}

// NewIdentityResolver returns a resolver backed by the publisher repository.
func NewIdentityResolver(publishers repository.PublisherRepository) IdentityResolver {
	return &identityResolver{publishers: publishers}
}

// Resolve treats identifiers containing '@' as emails and looks them up;
// anything else is taken as an already-canonical ID without an existence
// check. Click rows for unknown publishers are tolerated and simply never
// attribute.
func (r *identityResolver) Resolve(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingPublisher
	}

	if !strings.Contains(raw, "@") {
		return raw, nil
	}

	pub, err := r.publishers.GetByEmail(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("resolve publisher email: %w", err)
	}
	return pub.ID, nil
}
