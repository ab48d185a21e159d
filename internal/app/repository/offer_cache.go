package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedOfferRepository fronts an OfferRepository with a redis cache so the
// redirect hot path does not hit Postgres for every click on the same offer.
// Commission rules are never cached; they price money and must stay fresh.
type CachedOfferRepository struct {
	inner  OfferRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedOfferRepository wraps inner with a redis cache. Cache failures fall
// through to the database.
func NewCachedOfferRepository(inner OfferRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedOfferRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOfferRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedOfferRepository) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	key := offerCacheKey(id)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var offer model.Offer
		if jsonErr := json.Unmarshal(raw, &offer); jsonErr == nil {
			return &offer, nil
		}
		// A stale or corrupt entry falls through to the database below.
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("offer cache read failed", zap.Int64("offer_id", id), zap.Error(err))
	}

	offer, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(offer); jsonErr == nil {
		if setErr := r.client.Set(ctx, key, raw, r.ttl).Err(); setErr != nil {
			r.logger.Warn("offer cache write failed", zap.Int64("offer_id", id), zap.Error(setErr))
		}
	}
	return offer, nil
}

func (r *CachedOfferRepository) GetCommissionRule(ctx context.Context, offerID int64, publisherID string) (*model.OfferPublisher, error) {
	return r.inner.GetCommissionRule(ctx, offerID, publisherID)
}

func offerCacheKey(id int64) string {
	return fmt.Sprintf("offer:%d", id)
}
