package redis

import (
	"context"
	"errors"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// RequestCache caches per-candidate request counters.
// It implements query.PendingCounts and eventhandler.PendingCountCache.
// Counters are short-lived; the mentorship event handlers drop them as
// soon as a request changes status.
type RequestCache struct {
	cache *Cache
}

// NewRequestCache creates a new RequestCache.
func NewRequestCache(cache *Cache) *RequestCache {
	return &RequestCache{
		cache: cache,
	}
}

// GetPendingCount returns the cached pending counter for a candidate.
// A miss is (0, false, nil), not an error.
func (r *RequestCache) GetPendingCount(ctx context.Context, candidateID shared.PartyID) (int, bool, error) {
	var count int
	err := r.cache.Get(ctx, PendingCountKey(candidateID.String()), &count)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// SetPendingCount stores the pending counter for a candidate.
func (r *RequestCache) SetPendingCount(ctx context.Context, candidateID shared.PartyID, count int) error {
	return r.cache.Set(ctx, PendingCountKey(candidateID.String()), count, TTLPendingCount)
}

// AdjustPendingCount shifts a cached counter by delta: +1 when a request
// is created, -1 when it is answered. A missing counter is left alone;
// the next read repopulates it from the store.
func (r *RequestCache) AdjustPendingCount(ctx context.Context, candidateID shared.PartyID, delta int) error {
	key := PendingCountKey(candidateID.String())

	exists, err := r.cache.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	value, err := r.cache.IncrBy(ctx, key, int64(delta))
	if err != nil {
		return err
	}
	if value < 0 {
		// A negative counter means the key was stale; drop it.
		return r.cache.Delete(ctx, key)
	}

	// INCRBY recreates a key that expired mid-flight without a TTL;
	// re-arm it so a stray counter cannot live forever.
	return r.cache.Expire(ctx, key, TTLPendingCount)
}

// InvalidatePendingCount drops the counter after a request changes status.
func (r *RequestCache) InvalidatePendingCount(ctx context.Context, candidateID shared.PartyID) error {
	return r.cache.Delete(ctx, PendingCountKey(candidateID.String()))
}
