package eventhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type memMatchCache struct {
	invalidated []shared.PartyID
	err         error
}

func (c *memMatchCache) Get(_ context.Context, _ shared.PartyID) (matching.MatchResultList, bool, error) {
	return nil, false, nil
}

func (c *memMatchCache) Set(_ context.Context, _ shared.PartyID, _ matching.MatchResultList, _ time.Duration) error {
	return nil
}

func (c *memMatchCache) Invalidate(_ context.Context, seekerID shared.PartyID) error {
	if c.err != nil {
		return c.err
	}
	c.invalidated = append(c.invalidated, seekerID)
	return nil
}

type countAdjustment struct {
	candidateID shared.PartyID
	delta       int
}

type memPendingCounts struct {
	adjusted    []countAdjustment
	invalidated []shared.PartyID
	adjustErr   error
}

func (c *memPendingCounts) AdjustPendingCount(_ context.Context, candidateID shared.PartyID, delta int) error {
	if c.adjustErr != nil {
		return c.adjustErr
	}
	c.adjusted = append(c.adjusted, countAdjustment{candidateID, delta})
	return nil
}

func (c *memPendingCounts) InvalidatePendingCount(_ context.Context, candidateID shared.PartyID) error {
	c.invalidated = append(c.invalidated, candidateID)
	return nil
}

// remoteEvent имитирует событие, восстановленное из Redis:
// тип события известен, но конкретная структура потеряна.
type remoteEvent struct {
	eventType shared.EventType
	payload   map[string]interface{}
}

func (e remoteEvent) EventType() shared.EventType     { return e.eventType }
func (e remoteEvent) OccurredAt() time.Time           { return time.Now() }
func (e remoteEvent) AggregateID() string             { return "" }
func (e remoteEvent) Payload() map[string]interface{} { return e.payload }

// ─────────────────────────────────────────────────────────────────────────────
// OnBlockChangedHandler
// ─────────────────────────────────────────────────────────────────────────────

func TestOnBlockChanged_InvalidatesBothParties(t *testing.T) {
	cache := &memMatchCache{}
	handler := NewOnBlockChangedHandler(cache, nil)

	err := handler.Handle(shared.NewPartyBlockedEvent("alice", "bob"))
	assert.NoError(t, err)
	assert.Equal(t, []shared.PartyID{"alice", "bob"}, cache.invalidated,
		"block is symmetric: both sides lose their cached results")
}

func TestOnBlockChanged_UnblockAlsoInvalidates(t *testing.T) {
	cache := &memMatchCache{}
	handler := NewOnBlockChangedHandler(cache, nil)

	err := handler.Handle(shared.NewPartyUnblockedEvent("alice", "bob"))
	assert.NoError(t, err)
	assert.Len(t, cache.invalidated, 2)
}

func TestOnBlockChanged_RemoteEventPayloadFallback(t *testing.T) {
	cache := &memMatchCache{}
	handler := NewOnBlockChangedHandler(cache, nil)

	err := handler.Handle(remoteEvent{
		eventType: shared.EventPartyBlocked,
		payload: map[string]interface{}{
			"blocker_id": "alice",
			"blocked_id": "bob",
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, []shared.PartyID{"alice", "bob"}, cache.invalidated)
}

func TestOnBlockChanged_MissingPartiesIsNoop(t *testing.T) {
	cache := &memMatchCache{}
	handler := NewOnBlockChangedHandler(cache, nil)

	err := handler.Handle(remoteEvent{
		eventType: shared.EventPartyBlocked,
		payload:   map[string]interface{}{},
	})
	assert.NoError(t, err)
	assert.Empty(t, cache.invalidated)
}

func TestOnBlockChanged_CacheErrorIsSwallowed(t *testing.T) {
	cache := &memMatchCache{err: errors.New("redis down")}
	handler := NewOnBlockChangedHandler(cache, nil)

	// Инвалидация кеша - побочный эффект: его отказ не должен
	// ронять обработку события.
	err := handler.Handle(shared.NewPartyBlockedEvent("alice", "bob"))
	assert.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// OnMentorshipAnsweredHandler
// ─────────────────────────────────────────────────────────────────────────────

func TestOnMentorshipAnswered_RequestAndAnswerMoveCounter(t *testing.T) {
	counts := &memPendingCounts{}
	handler := NewOnMentorshipAnsweredHandler(counts, nil)

	err := handler.Handle(shared.NewMentorshipRequestedEvent("req-1", "alice", "bob"))
	assert.NoError(t, err)

	err = handler.Handle(shared.NewMentorshipRespondedEvent("req-1", "alice", "bob", "accepted"))
	assert.NoError(t, err)

	assert.Equal(t, []countAdjustment{
		{"bob", 1},
		{"bob", -1},
	}, counts.adjusted)
	assert.Empty(t, counts.invalidated)
}

func TestOnMentorshipAnswered_RemoteEventPayloadFallback(t *testing.T) {
	counts := &memPendingCounts{}
	handler := NewOnMentorshipAnsweredHandler(counts, nil)

	err := handler.Handle(remoteEvent{
		eventType: shared.EventMentorshipDeclined,
		payload:   map[string]interface{}{"candidate_id": "bob"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []countAdjustment{{"bob", -1}}, counts.adjusted)
}

func TestOnMentorshipAnswered_AdjustErrorDropsCounter(t *testing.T) {
	counts := &memPendingCounts{adjustErr: errors.New("redis down")}
	handler := NewOnMentorshipAnsweredHandler(counts, nil)

	err := handler.Handle(shared.NewMentorshipRequestedEvent("req-1", "alice", "bob"))
	assert.Error(t, err, "dispatcher retries the adjustment")
	assert.Equal(t, []shared.PartyID{"bob"}, counts.invalidated,
		"a counter that could not be moved must not survive")
}
