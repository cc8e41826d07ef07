package redis

import (
	"context"
	"errors"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// MatchCache implements query.MatchCache using the generic Redis Cache.
// One key per seeker holds the full ranked list as JSON; order is part
// of the payload, so a hit reproduces the exact deck.
type MatchCache struct {
	cache *Cache
}

// NewMatchCache creates a new MatchCache.
func NewMatchCache(cache *Cache) *MatchCache {
	return &MatchCache{
		cache: cache,
	}
}

// Get returns the cached ranked list for a seeker.
// A miss is (nil, false, nil), not an error.
func (m *MatchCache) Get(ctx context.Context, seekerID shared.PartyID) (matching.MatchResultList, bool, error) {
	var results matching.MatchResultList
	err := m.cache.Get(ctx, MatchesKey(seekerID.String()), &results)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return results, true, nil
}

// Set stores the ranked list for a seeker.
func (m *MatchCache) Set(ctx context.Context, seekerID shared.PartyID, results matching.MatchResultList, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLMatchCache
	}
	return m.cache.Set(ctx, MatchesKey(seekerID.String()), results, ttl)
}

// Invalidate drops the cached list for a seeker.
// Called when a block or profile change makes the list stale.
func (m *MatchCache) Invalidate(ctx context.Context, seekerID shared.PartyID) error {
	return m.cache.Delete(ctx, MatchesKey(seekerID.String()))
}

// InvalidateAll clears every cached match list.
func (m *MatchCache) InvalidateAll(ctx context.Context) error {
	return m.cache.DeleteByPattern(ctx, PrefixMatches+"*")
}
