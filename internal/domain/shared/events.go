// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Matching events
	EventMatchSessionStarted   EventType = "matching.session_started"
	EventMatchSessionExhausted EventType = "matching.session_exhausted"
	EventMatchesRanked         EventType = "matching.ranked"

	// Mentorship events
	EventMentorshipRequested EventType = "mentorship.requested"
	EventMentorshipAccepted  EventType = "mentorship.accepted"
	EventMentorshipDeclined  EventType = "mentorship.declined"

	// Block events
	EventPartyBlocked   EventType = "block.created"
	EventPartyUnblocked EventType = "block.removed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Matching Events
// ═══════════════════════════════════════════════════════════════════════════

// MatchSessionStartedEvent is emitted when a seeker starts a matching session.
type MatchSessionStartedEvent struct {
	BaseEvent
	SeekerID    string `json:"seeker_id"`
	ResultCount int    `json:"result_count"`
	Threshold   float64 `json:"threshold"`
}

// Payload implements Event interface.
func (e MatchSessionStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"seeker_id":    e.SeekerID,
		"result_count": e.ResultCount,
		"threshold":    e.Threshold,
	}
}

// NewMatchSessionStartedEvent creates a new MatchSessionStartedEvent.
func NewMatchSessionStartedEvent(seekerID string, resultCount int, threshold float64) MatchSessionStartedEvent {
	return MatchSessionStartedEvent{
		BaseEvent:   NewBaseEvent(EventMatchSessionStarted, seekerID),
		SeekerID:    seekerID,
		ResultCount: resultCount,
		Threshold:   threshold,
	}
}

// MatchSessionExhaustedEvent is emitted when a seeker walks past the last
// result of their session.
type MatchSessionExhaustedEvent struct {
	BaseEvent
	SeekerID string `json:"seeker_id"`
	Total    int    `json:"total"`
}

// Payload implements Event interface.
func (e MatchSessionExhaustedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"seeker_id": e.SeekerID,
		"total":     e.Total,
	}
}

// NewMatchSessionExhaustedEvent creates a new MatchSessionExhaustedEvent.
func NewMatchSessionExhaustedEvent(seekerID string, total int) MatchSessionExhaustedEvent {
	return MatchSessionExhaustedEvent{
		BaseEvent: NewBaseEvent(EventMatchSessionExhausted, seekerID),
		SeekerID:  seekerID,
		Total:     total,
	}
}

// MatchesRankedEvent is emitted after a ranking run completes.
type MatchesRankedEvent struct {
	BaseEvent
	SeekerID  string `json:"seeker_id"`
	Scored    int    `json:"scored"`
	Returned  int    `json:"returned"`
	Excluded  int    `json:"excluded"` // blocked or ineligible candidates
	TopScore  float64 `json:"top_score,omitempty"`
}

// Payload implements Event interface.
func (e MatchesRankedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"seeker_id": e.SeekerID,
		"scored":    e.Scored,
		"returned":  e.Returned,
		"excluded":  e.Excluded,
		"top_score": e.TopScore,
	}
}

// NewMatchesRankedEvent creates a new MatchesRankedEvent.
func NewMatchesRankedEvent(seekerID string, scored, returned, excluded int, topScore float64) MatchesRankedEvent {
	return MatchesRankedEvent{
		BaseEvent: NewBaseEvent(EventMatchesRanked, seekerID),
		SeekerID:  seekerID,
		Scored:    scored,
		Returned:  returned,
		Excluded:  excluded,
		TopScore:  topScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Mentorship Events
// ═══════════════════════════════════════════════════════════════════════════

// MentorshipRequestedEvent is emitted when a seeker requests mentorship.
type MentorshipRequestedEvent struct {
	BaseEvent
	RequestID   string `json:"request_id"`
	SeekerID    string `json:"seeker_id"`
	CandidateID string `json:"candidate_id"`
}

// Payload implements Event interface.
func (e MentorshipRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"request_id":   e.RequestID,
		"seeker_id":    e.SeekerID,
		"candidate_id": e.CandidateID,
	}
}

// NewMentorshipRequestedEvent creates a new MentorshipRequestedEvent.
func NewMentorshipRequestedEvent(requestID, seekerID, candidateID string) MentorshipRequestedEvent {
	return MentorshipRequestedEvent{
		BaseEvent:   NewBaseEvent(EventMentorshipRequested, requestID),
		RequestID:   requestID,
		SeekerID:    seekerID,
		CandidateID: candidateID,
	}
}

// MentorshipRespondedEvent is emitted when a candidate accepts or declines.
type MentorshipRespondedEvent struct {
	BaseEvent
	RequestID   string `json:"request_id"`
	SeekerID    string `json:"seeker_id"`
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"`
}

// Payload implements Event interface.
func (e MentorshipRespondedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"request_id":   e.RequestID,
		"seeker_id":    e.SeekerID,
		"candidate_id": e.CandidateID,
		"status":       e.Status,
	}
}

// NewMentorshipRespondedEvent creates a new MentorshipRespondedEvent.
// The event type depends on the final status.
func NewMentorshipRespondedEvent(requestID, seekerID, candidateID, status string) MentorshipRespondedEvent {
	eventType := EventMentorshipAccepted
	if status == "declined" {
		eventType = EventMentorshipDeclined
	}
	return MentorshipRespondedEvent{
		BaseEvent:   NewBaseEvent(eventType, requestID),
		RequestID:   requestID,
		SeekerID:    seekerID,
		CandidateID: candidateID,
		Status:      status,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Block Events
// ═══════════════════════════════════════════════════════════════════════════

// PartyBlockedEvent is emitted when one party blocks another.
type PartyBlockedEvent struct {
	BaseEvent
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
}

// Payload implements Event interface.
func (e PartyBlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"blocker_id": e.BlockerID,
		"blocked_id": e.BlockedID,
	}
}

// NewPartyBlockedEvent creates a new PartyBlockedEvent.
func NewPartyBlockedEvent(blockerID, blockedID string) PartyBlockedEvent {
	return PartyBlockedEvent{
		BaseEvent: NewBaseEvent(EventPartyBlocked, blockerID),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
}

// PartyUnblockedEvent is emitted when a block is removed.
type PartyUnblockedEvent struct {
	BaseEvent
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
}

// Payload implements Event interface.
func (e PartyUnblockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"blocker_id": e.BlockerID,
		"blocked_id": e.BlockedID,
	}
}

// NewPartyUnblockedEvent creates a new PartyUnblockedEvent.
func NewPartyUnblockedEvent(blockerID, blockedID string) PartyUnblockedEvent {
	return PartyUnblockedEvent{
		BaseEvent: NewBaseEvent(EventPartyUnblocked, blockerID),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Infrastructure Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
