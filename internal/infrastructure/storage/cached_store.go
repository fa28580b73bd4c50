package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"FundingScanner/internal/ports"
)

const (
	seenKeyPrefix = "fundingscanner:seen:"
	scanBatch     = 100
)

// CachedStore answers HasSeen from Redis before falling back to the wrapped store.
// Keys expire when the bookkeeping row would be purged. Redis failures are logged and
// never fail an operation; the wrapped store stays authoritative.
type CachedStore struct {
	ports.Store
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewCachedStore decorates store with a Redis client.
func NewCachedStore(store ports.Store, client *redis.Client, retention time.Duration, log *slog.Logger, opts ...Option) *CachedStore {
	o := buildOptions(opts)
	if log == nil {
		log = slog.Default()
	}
	return &CachedStore{
		Store:     store,
		client:    client,
		retention: retention,
		now:       o.now,
		logger:    log,
	}
}

// DialRedis parses a redis:// URL and checks connectivity.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", ErrStoreUnavailable, err)
	}
	return client, nil
}

func (c *CachedStore) HasSeen(ctx context.Context, articleID string) (bool, error) {
	n, err := c.client.Exists(ctx, seenKey(articleID)).Result()
	switch {
	case err == nil && n > 0:
		return true, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("seen cache lookup failed", "article_id", articleID, "error", err)
	}

	seen, err := c.Store.HasSeen(ctx, articleID)
	if err != nil {
		return false, err
	}
	if seen {
		// First-seen time is unknown here. The full window may outlive the row,
		// so PurgeOlderThan drops cached keys whenever it removes rows.
		c.remember(ctx, articleID, c.retention)
	}
	return seen, nil
}

// MarkSeen caches only newly inserted rows; a repeat keeps the original expiry.
func (c *CachedStore) MarkSeen(ctx context.Context, articleID string, fundingRelated bool, at time.Time) error {
	existed, err := c.Store.HasSeen(ctx, articleID)
	if err != nil {
		return err
	}
	if err := c.Store.MarkSeen(ctx, articleID, fundingRelated, at); err != nil {
		return err
	}
	if !existed {
		c.remember(ctx, articleID, c.retention-c.now().Sub(at))
	}
	return nil
}

// PurgeOlderThan purges the wrapped store and, when rows went away, flushes every
// cached seen key so purged identifiers read as unseen again.
func (c *CachedStore) PurgeOlderThan(ctx context.Context, window time.Duration) (int64, error) {
	purged, err := c.Store.PurgeOlderThan(ctx, window)
	if err != nil {
		return purged, err
	}
	if purged > 0 {
		if err := c.flush(ctx); err != nil {
			c.logger.Warn("seen cache flush failed", "error", err)
		}
	}
	return purged, nil
}

func (c *CachedStore) Close() error {
	cacheErr := c.client.Close()
	storeErr := c.Store.Close()
	return errors.Join(storeErr, cacheErr)
}

func (c *CachedStore) remember(ctx context.Context, articleID string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, seenKey(articleID), 1, ttl).Err(); err != nil {
		c.logger.Warn("seen cache write failed", "article_id", articleID, "error", err)
	}
}

func (c *CachedStore) flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, seenKeyPrefix+"*", scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

func seenKey(articleID string) string {
	return seenKeyPrefix + articleID
}
