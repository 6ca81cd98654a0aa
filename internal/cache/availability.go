// Package cache provides a Redis-backed seat availability cache.  The
// engine treats it as strictly optional: a miss, a timeout or a nil
// client all fall back to recomputing availability from the ledger.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/model"
)

// DefaultTTL bounds how stale a cached availability figure can get if
// an invalidation is lost, for example when Redis restarts between the
// purchase commit and the delete.
const DefaultTTL = 30 * time.Second

// Availability caches per-occurrence free seat counts under keys of
// the form "avail:<screening_id>:<date>".
type Availability struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewAvailability builds the cache around an existing Redis client.
// A zero ttl selects DefaultTTL and a nil logger silences the cache.
func NewAvailability(client *redis.Client, ttl time.Duration, log *zap.Logger) *Availability {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Availability{client: client, ttl: ttl, log: log}
}

func availabilityKey(screeningID uint64, date model.Date) string {
	return fmt.Sprintf("avail:%d:%s", screeningID, date.String())
}

// Get returns the cached free seat count for an occurrence.  The
// second return value is false on a miss or on any Redis error.
func (a *Availability) Get(ctx context.Context, screeningID uint64, date model.Date) (uint32, bool) {
	val, err := a.client.Get(ctx, availabilityKey(screeningID, date)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		a.log.Warn("availability cache read failed", zap.Error(err))
		return 0, false
	}
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Set stores the free seat count for an occurrence.  The write is
// SETNX so a reader that computed its figure before a concurrent
// purchase cannot clobber a fresher entry installed after the
// invalidation; if the slot is empty the stale figure may still land,
// which the TTL bounds.  Errors are logged and dropped; the cache
// never fails a read path.
func (a *Availability) Set(ctx context.Context, screeningID uint64, date model.Date, available uint32) {
	key := availabilityKey(screeningID, date)
	if err := a.client.SetNX(ctx, key, strconv.FormatUint(uint64(available), 10), a.ttl).Err(); err != nil {
		a.log.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the cached count for an occurrence.  Called after a
// purchase commits so the next read recomputes from the ledger.
func (a *Availability) Invalidate(ctx context.Context, screeningID uint64, date model.Date) {
	key := availabilityKey(screeningID, date)
	if err := a.client.Del(ctx, key).Err(); err != nil {
		a.log.Warn("availability cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
