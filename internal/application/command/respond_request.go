package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPOND TO REQUEST COMMAND
// Кандидат принимает или отклоняет запрос наставничества.
// Терминальный статус терминален: повтор того же ответа - no-op успех,
// противоречащий ответ - ошибка перехода.
// ══════════════════════════════════════════════════════════════════════════════

// RespondToRequestCommand contains the data to answer a mentorship request.
type RespondToRequestCommand struct {
	// RequestID is the ID of the request being answered.
	RequestID string

	// ActorID is the party answering. Must be the candidate side.
	ActorID string

	// Status is the target status: accepted or declined.
	Status mentorship.Status

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RespondToRequestCommand) Validate() error {
	if c.RequestID == "" {
		return errors.New("respond_request: request_id is required")
	}
	if c.ActorID == "" {
		return errors.New("respond_request: actor_id is required")
	}
	if !c.Status.IsValid() || c.Status == mentorship.StatusPending {
		return fmt.Errorf("respond_request: invalid target status: %s", c.Status)
	}
	return nil
}

// RespondToRequestResult contains the result of answering a request.
type RespondToRequestResult struct {
	// Request is the request after the transition.
	Request *mentorship.Request

	// NoOp is true when the request was already in the target status.
	NoOp bool

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RespondToRequestHandler handles the RespondToRequestCommand.
type RespondToRequestHandler struct {
	requests       mentorship.Repository
	gate           *block.Gate
	eventPublisher shared.EventPublisher
}

// NewRespondToRequestHandler creates a new RespondToRequestHandler.
func NewRespondToRequestHandler(
	requests mentorship.Repository,
	gate *block.Gate,
	eventPublisher shared.EventPublisher,
) *RespondToRequestHandler {
	return &RespondToRequestHandler{
		requests:       requests,
		gate:           gate,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the respond to request command.
func (h *RespondToRequestHandler) Handle(ctx context.Context, cmd RespondToRequestCommand) (*RespondToRequestResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("respond_request: validation failed: %w", err)
	}

	request, err := h.requests.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("respond_request: lookup: %w", err)
	}

	// The block gate vetoes any answer on the request, even if the block
	// appeared after the request was created.
	blocked, err := h.gate.IsBlocked(ctx, request.SeekerID, request.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("respond_request: block check: %w", err)
	}
	if blocked {
		return nil, shared.ErrBlockedPair
	}

	wasTerminal := request.Status.IsTerminal()

	// Authorization and transition rules live in the entity.
	if err := request.Transition(cmd.Status, shared.PartyID(cmd.ActorID)); err != nil {
		return nil, err
	}

	if wasTerminal {
		// Idempotent repeat of the same terminal answer: nothing to persist.
		return &RespondToRequestResult{Request: request, NoOp: true}, nil
	}

	if err := h.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("respond_request: update: %w", err)
	}

	event := shared.NewMentorshipRespondedEvent(
		request.ID,
		request.SeekerID.String(),
		request.CandidateID.String(),
		string(request.Status),
	)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	h.publish(event)

	return &RespondToRequestResult{
		Request: request,
		Events:  []shared.Event{event},
	}, nil
}

func (h *RespondToRequestHandler) publish(event shared.Event) {
	if h.eventPublisher == nil {
		return
	}
	_ = h.eventPublisher.Publish(event)
}
