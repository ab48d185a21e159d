package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupKeyPrefix = "dedup"

// bloom sizing: ~1M fingerprints per process at 1% false positives.
const (
	bloomCapacity = 1_000_000
	bloomFalsePos = 0.01
)

// DedupCache layers two advisory caches in front of the click uniqueness
// query: a redis key shared across server instances and a per-process bloom
// filter. Both are best-effort; the click rows in Postgres stay the source of
// truth for the fingerprint window.
type DedupCache struct {
	redis  *redis.Client
	logger *zap.Logger
	window time.Duration

	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewDedupCache builds a cache whose redis entries expire with the dedup
// window. A nil redis client disables the shared layer.
func NewDedupCache(rdb *redis.Client, window time.Duration, logger *zap.Logger) *DedupCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DedupCache{
		redis:  rdb,
		logger: logger,
		window: window,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFalsePos),
	}
}

// Fingerprint collapses the dedup identity into a stable key component.
func Fingerprint(publisherID string, offerID int64, ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return fmt.Sprintf("%s:%d:%s", publisherID, offerID, hex.EncodeToString(sum[:16]))
}

// SharedEnabled reports whether the cross-instance redis layer is configured.
func (c *DedupCache) SharedEnabled() bool {
	return c.redis != nil
}

// SeenShared reports whether any instance recorded this fingerprint within
// the window. Redis failures fail open: the caller falls through to the
// database check.
func (c *DedupCache) SeenShared(ctx context.Context, fingerprint string) bool {
	if c.redis == nil {
		return false
	}
	n, err := c.redis.Exists(ctx, dedupKeyPrefix+":"+fingerprint).Result()
	if err != nil {
		c.logger.Warn("dedup redis lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}

// SeenLocal reports whether this process may have recorded the fingerprint.
// A false result means the fingerprint was definitely not seen locally.
func (c *DedupCache) SeenLocal(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Test([]byte(fingerprint))
}

// MarkSeen records the fingerprint in both layers after a click is persisted.
func (c *DedupCache) MarkSeen(ctx context.Context, fingerprint string) {
	c.mu.Lock()
	c.filter.Add([]byte(fingerprint))
	c.mu.Unlock()

	if c.redis == nil {
		return
	}
	// SetNX anchors the TTL at the first click so repeat clicks do not slide
	// the window past what the database query would report.
	if err := c.redis.SetNX(ctx, dedupKeyPrefix+":"+fingerprint, 1, c.window).Err(); err != nil {
		c.logger.Warn("dedup redis mark failed", zap.Error(err))
	}
}
