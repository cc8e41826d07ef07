package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

func TestSetBlocked_BlockAndUnblock(t *testing.T) {
	blocks := newMemBlocks()
	gate := block.NewGate(blocks)
	publisher := &capturingPublisher{}
	handler := NewSetBlockedHandler(gate, publisher)

	result, err := handler.Handle(context.Background(), SetBlockedCommand{
		BlockerID: "alice",
		BlockedID: "bob",
		Blocked:   true,
	})
	assert.NoError(t, err)
	assert.True(t, result.Blocked)

	blocked, err := gate.IsBlocked(context.Background(), "bob", "alice")
	assert.NoError(t, err)
	assert.True(t, blocked, "block suppresses the pair in both directions")

	result, err = handler.Handle(context.Background(), SetBlockedCommand{
		BlockerID: "alice",
		BlockedID: "bob",
		Blocked:   false,
	})
	assert.NoError(t, err)
	assert.False(t, result.Blocked)

	blocked, err = gate.IsBlocked(context.Background(), "alice", "bob")
	assert.NoError(t, err)
	assert.False(t, blocked)

	assert.Len(t, publisher.events, 2)
	assert.Equal(t, shared.EventPartyBlocked, publisher.events[0].EventType())
	assert.Equal(t, shared.EventPartyUnblocked, publisher.events[1].EventType())
}

func TestSetBlocked_BlockIsIdempotent(t *testing.T) {
	gate := block.NewGate(newMemBlocks())
	handler := NewSetBlockedHandler(gate, nil)

	for i := 0; i < 3; i++ {
		result, err := handler.Handle(context.Background(), SetBlockedCommand{
			BlockerID: "alice",
			BlockedID: "bob",
			Blocked:   true,
		})
		assert.NoError(t, err)
		assert.True(t, result.Blocked)
	}
}

func TestSetBlocked_UnblockWithoutBlockIsNoOp(t *testing.T) {
	gate := block.NewGate(newMemBlocks())
	handler := NewSetBlockedHandler(gate, nil)

	result, err := handler.Handle(context.Background(), SetBlockedCommand{
		BlockerID: "alice",
		BlockedID: "bob",
		Blocked:   false,
	})
	assert.NoError(t, err)
	assert.False(t, result.Blocked)
}

func TestSetBlocked_OnlyOwnDirectionIsRemoved(t *testing.T) {
	blocks := newMemBlocks()
	gate := block.NewGate(blocks)
	handler := NewSetBlockedHandler(gate, nil)

	// Both sides block each other.
	_, err := handler.Handle(context.Background(), SetBlockedCommand{BlockerID: "alice", BlockedID: "bob", Blocked: true})
	assert.NoError(t, err)
	_, err = handler.Handle(context.Background(), SetBlockedCommand{BlockerID: "bob", BlockedID: "alice", Blocked: true})
	assert.NoError(t, err)

	// Alice unblocks; Bob's block still suppresses the pair.
	_, err = handler.Handle(context.Background(), SetBlockedCommand{BlockerID: "alice", BlockedID: "bob", Blocked: false})
	assert.NoError(t, err)

	blocked, err := gate.IsBlocked(context.Background(), "alice", "bob")
	assert.NoError(t, err)
	assert.True(t, blocked)
}

func TestSetBlocked_SelfBlockRejected(t *testing.T) {
	handler := NewSetBlockedHandler(block.NewGate(newMemBlocks()), nil)

	_, err := handler.Handle(context.Background(), SetBlockedCommand{
		BlockerID: "alice",
		BlockedID: "alice",
		Blocked:   true,
	})
	assert.ErrorIs(t, err, shared.ErrSelfBlock)
}
