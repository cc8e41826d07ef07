package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET BLOCKED COMMAND
// Блокировка/разблокировка стороны. Обе операции идемпотентны.
// ══════════════════════════════════════════════════════════════════════════════

// SetBlockedCommand contains the data to block or unblock a party.
type SetBlockedCommand struct {
	// BlockerID is the party performing the action.
	BlockerID string

	// BlockedID is the party being blocked or unblocked.
	BlockedID string

	// Blocked is the desired state: true = block, false = unblock.
	Blocked bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SetBlockedCommand) Validate() error {
	if c.BlockerID == "" {
		return errors.New("set_blocked: blocker_id is required")
	}
	if c.BlockedID == "" {
		return errors.New("set_blocked: blocked_id is required")
	}
	if c.BlockerID == c.BlockedID {
		return shared.ErrSelfBlock
	}
	return nil
}

// SetBlockedResult contains the result of the block action.
type SetBlockedResult struct {
	// Blocked is the resulting state of the pair.
	Blocked bool

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SetBlockedHandler handles the SetBlockedCommand.
type SetBlockedHandler struct {
	gate           *block.Gate
	eventPublisher shared.EventPublisher
}

// NewSetBlockedHandler creates a new SetBlockedHandler.
func NewSetBlockedHandler(gate *block.Gate, eventPublisher shared.EventPublisher) *SetBlockedHandler {
	return &SetBlockedHandler{
		gate:           gate,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the set blocked command.
func (h *SetBlockedHandler) Handle(ctx context.Context, cmd SetBlockedCommand) (*SetBlockedResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("set_blocked: validation failed: %w", err)
	}

	blockerID := shared.PartyID(cmd.BlockerID)
	blockedID := shared.PartyID(cmd.BlockedID)

	if cmd.Blocked {
		if _, err := h.gate.Block(ctx, blockerID, blockedID); err != nil {
			return nil, fmt.Errorf("set_blocked: block: %w", err)
		}

		event := shared.NewPartyBlockedEvent(cmd.BlockerID, cmd.BlockedID)
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		h.publish(event)

		return &SetBlockedResult{Blocked: true, Events: []shared.Event{event}}, nil
	}

	if err := h.gate.Unblock(ctx, blockerID, blockedID); err != nil {
		return nil, fmt.Errorf("set_blocked: unblock: %w", err)
	}

	event := shared.NewPartyUnblockedEvent(cmd.BlockerID, cmd.BlockedID)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	h.publish(event)

	return &SetBlockedResult{Blocked: false, Events: []shared.Event{event}}, nil
}

func (h *SetBlockedHandler) publish(event shared.Event) {
	if h.eventPublisher == nil {
		return
	}
	_ = h.eventPublisher.Publish(event)
}
