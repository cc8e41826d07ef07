// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST MENTORSHIP COMMAND
// Ищущий действует по результату подбора: создаёт запрос наставничества.
// Запрос рождается в статусе pending; дальше решает только кандидат.
// ══════════════════════════════════════════════════════════════════════════════

// RequestMentorshipCommand contains the data to create a mentorship request.
type RequestMentorshipCommand struct {
	// SeekerID is the ID of the seeker acting on a match result.
	SeekerID string

	// CandidateID is the ID of the chosen candidate.
	CandidateID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RequestMentorshipCommand) Validate() error {
	if c.SeekerID == "" {
		return errors.New("request_mentorship: seeker_id is required")
	}
	if c.CandidateID == "" {
		return errors.New("request_mentorship: candidate_id is required")
	}
	if c.SeekerID == c.CandidateID {
		return shared.ErrSelfRequest
	}
	return nil
}

// RequestMentorshipResult contains the result of creating a request.
type RequestMentorshipResult struct {
	// Request is the created request.
	Request *mentorship.Request

	// AlreadyRequested is true when a pending request existed and no new
	// row was inserted. Callers surface "already requested", not a failure.
	AlreadyRequested bool

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RequestMentorshipHandler handles the RequestMentorshipCommand.
type RequestMentorshipHandler struct {
	profiles       profile.Store
	requests       mentorship.Repository
	gate           *block.Gate
	eventPublisher shared.EventPublisher
}

// NewRequestMentorshipHandler creates a new RequestMentorshipHandler.
// All collaborators are injected explicitly.
func NewRequestMentorshipHandler(
	profiles profile.Store,
	requests mentorship.Repository,
	gate *block.Gate,
	eventPublisher shared.EventPublisher,
) *RequestMentorshipHandler {
	return &RequestMentorshipHandler{
		profiles:       profiles,
		requests:       requests,
		gate:           gate,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the request mentorship command.
func (h *RequestMentorshipHandler) Handle(ctx context.Context, cmd RequestMentorshipCommand) (*RequestMentorshipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("request_mentorship: validation failed: %w", err)
	}

	seekerID := shared.PartyID(cmd.SeekerID)
	candidateID := shared.PartyID(cmd.CandidateID)

	// Verify both profiles exist; the candidate must be eligible.
	if _, err := h.profiles.GetSeeker(ctx, seekerID); err != nil {
		return nil, fmt.Errorf("request_mentorship: seeker lookup: %w", err)
	}

	candidate, err := h.profiles.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("request_mentorship: candidate lookup: %w", err)
	}
	if !candidate.Eligible() {
		return nil, shared.NewDomainError("mentorship", "Create", shared.ErrInvalidState, "candidate is not verified or not active")
	}

	// The block gate vetoes the action in either direction.
	blocked, err := h.gate.IsBlocked(ctx, seekerID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("request_mentorship: block check: %w", err)
	}
	if blocked {
		return nil, shared.ErrBlockedPair
	}

	// An open request for the pair is a signal, not a fatal error.
	if existing, err := h.requests.FindPendingByPair(ctx, seekerID, candidateID); err == nil {
		return &RequestMentorshipResult{
			Request:          existing,
			AlreadyRequested: true,
		}, nil
	} else if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("request_mentorship: duplicate check: %w", err)
	}

	request, err := mentorship.NewRequest(mentorship.NewRequestParams{
		ID:          uuid.NewString(),
		SeekerID:    seekerID,
		CandidateID: candidateID,
	})
	if err != nil {
		return nil, fmt.Errorf("request_mentorship: %w", err)
	}

	if err := h.requests.Create(ctx, request); err != nil {
		if shared.IsAlreadyExists(err) {
			// Lost the race to a concurrent insert; treat as duplicate signal.
			if existing, findErr := h.requests.FindPendingByPair(ctx, seekerID, candidateID); findErr == nil {
				return &RequestMentorshipResult{Request: existing, AlreadyRequested: true}, nil
			}
			return nil, shared.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("request_mentorship: create: %w", err)
	}

	event := shared.NewMentorshipRequestedEvent(request.ID, cmd.SeekerID, cmd.CandidateID)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	h.publish(event)

	return &RequestMentorshipResult{
		Request: request,
		Events:  []shared.Event{event},
	}, nil
}

// publish sends an event if a publisher is configured.
// Event delivery failures do not fail the command.
func (h *RequestMentorshipHandler) publish(event shared.Event) {
	if h.eventPublisher == nil {
		return
	}
	_ = h.eventPublisher.Publish(event)
}
