// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
// Sagas ensure consistency across operations and handle compensation on failures.
package saga

import (
	"context"
	"fmt"
	"sync"

	"github.com/cybermatch/cybermatch-hub/internal/application/command"
	"github.com/cybermatch/cybermatch-hub/internal/application/query"
	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH SESSION SAGA
// Business process: a seeker browses the ranked candidate deck one card
// at a time.
// Flow: Rank Candidates → Start Queue → Present Current → (Act | Skip) →
//
//	Advance → ... → Exhausted → Restart On Demand
//
// Philosophy: one candidate at a time keeps the decision honest. The
// ranked list is frozen when the session starts; profile changes apply
// on the next session, never mid-deck.
// ══════════════════════════════════════════════════════════════════════════════

// matchSession pairs a queue with its own lock. The queue itself is not
// safe for concurrent use; all access goes through this lock so that two
// simultaneous calls for the same seeker serialize instead of racing.
type matchSession struct {
	mu    sync.Mutex
	queue *matching.Queue
}

// MatchSessionManager owns the live matching sessions, one per seeker.
// Sessions are in-process state: a restart clears them, and the seeker
// simply starts a new session.
type MatchSessionManager struct {
	mu       sync.Mutex
	sessions map[shared.PartyID]*matchSession

	matches    *query.GetMatchesHandler
	requesting *command.RequestMentorshipHandler
	publisher  shared.EventPublisher
}

// NewMatchSessionManager creates a new MatchSessionManager.
func NewMatchSessionManager(
	matches *query.GetMatchesHandler,
	requesting *command.RequestMentorshipHandler,
	publisher shared.EventPublisher,
) *MatchSessionManager {
	return &MatchSessionManager{
		sessions:   make(map[shared.PartyID]*matchSession),
		matches:    matches,
		requesting: requesting,
		publisher:  publisher,
	}
}

// SessionView is a snapshot of a session presented to the caller.
type SessionView struct {
	// SeekerID - whose session this is.
	SeekerID string `json:"seeker_id"`

	// State - session state: idle, active or exhausted.
	State string `json:"state"`

	// Current - the candidate under consideration (nil when exhausted).
	Current *query.MatchDTO `json:"current,omitempty"`

	// Position - 1-based position of the current candidate.
	Position int `json:"position"`

	// Remaining - candidates left including the current one.
	Remaining int `json:"remaining"`

	// Total - size of the ranked deck.
	Total int `json:"total"`
}

// StartSession ranks candidates for the seeker and opens a fresh queue.
// An existing session for the seeker is discarded.
// Returns shared.ErrNoMatchesFound when nothing clears the threshold.
func (m *MatchSessionManager) StartSession(ctx context.Context, q query.GetMatchesQuery) (*SessionView, error) {
	results, err := m.matches.Ranked(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("match session: rank: %w", err)
	}

	seekerID := shared.PartyID(q.SeekerID)

	queue := matching.NewQueue(seekerID)
	if err := queue.Start(results); err != nil {
		return nil, err
	}

	// Snapshot before publishing the session: once it is in the map a
	// concurrent call may advance it.
	view := m.view(queue)

	m.mu.Lock()
	m.sessions[seekerID] = &matchSession{queue: queue}
	m.mu.Unlock()

	m.publish(shared.NewMatchSessionStartedEvent(q.SeekerID, queue.Total(), thresholdOf(q)))

	return view, nil
}

// Current returns the session snapshot with the candidate under
// consideration. Returns shared.ErrNoActiveSession when the seeker has
// no session, shared.ErrQueueExhausted when the deck ran out.
func (m *MatchSessionManager) Current(_ context.Context, seekerID shared.PartyID) (*SessionView, error) {
	sess, err := m.session(seekerID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := sess.queue.Current(); err != nil {
		return nil, err
	}
	return m.view(sess.queue), nil
}

// Advance skips the current candidate and moves to the next one.
// Advancing past the last candidate exhausts the session; advancing an
// exhausted session is a no-op.
func (m *MatchSessionManager) Advance(_ context.Context, seekerID shared.PartyID) (*SessionView, error) {
	sess, err := m.session(seekerID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	wasActive := sess.queue.State() == matching.QueueActive

	if err := sess.queue.Advance(); err != nil {
		return nil, err
	}

	if wasActive && sess.queue.State() == matching.QueueExhausted {
		m.publish(shared.NewMatchSessionExhaustedEvent(seekerID.String(), sess.queue.Total()))
	}

	return m.view(sess.queue), nil
}

// ActOnCurrent sends a mentorship request to the candidate under
// consideration and advances the deck past them.
func (m *MatchSessionManager) ActOnCurrent(ctx context.Context, seekerID shared.PartyID, correlationID string) (*command.RequestMentorshipResult, *SessionView, error) {
	sess, err := m.session(seekerID)
	if err != nil {
		return nil, nil, err
	}

	// Held across the command so a double-tap cannot act on the same
	// candidate twice.
	sess.mu.Lock()
	defer sess.mu.Unlock()

	current, err := sess.queue.Current()
	if err != nil {
		return nil, nil, err
	}

	result, err := m.requesting.Handle(ctx, command.RequestMentorshipCommand{
		SeekerID:      seekerID.String(),
		CandidateID:   current.CandidateID.String(),
		CorrelationID: correlationID,
	})
	if err != nil {
		// The deck does not move when the request fails; the seeker can
		// retry or skip explicitly.
		return nil, nil, err
	}

	wasActive := sess.queue.State() == matching.QueueActive
	if err := sess.queue.Advance(); err != nil {
		return result, nil, err
	}
	if wasActive && sess.queue.State() == matching.QueueExhausted {
		m.publish(shared.NewMatchSessionExhaustedEvent(seekerID.String(), sess.queue.Total()))
	}

	return result, m.view(sess.queue), nil
}

// EndSession discards the seeker's session if one exists.
func (m *MatchSessionManager) EndSession(_ context.Context, seekerID shared.PartyID) {
	m.mu.Lock()
	delete(m.sessions, seekerID)
	m.mu.Unlock()
}

func (m *MatchSessionManager) session(seekerID shared.PartyID) (*matchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[seekerID]
	if !ok {
		return nil, shared.ErrNoActiveSession
	}
	return sess, nil
}

func (m *MatchSessionManager) view(queue *matching.Queue) *SessionView {
	view := &SessionView{
		SeekerID:  queue.SeekerID().String(),
		State:     string(queue.State()),
		Remaining: queue.Remaining(),
		Total:     queue.Total(),
	}

	if current, err := queue.Current(); err == nil {
		view.Position = queue.Position() + 1
		view.Current = &query.MatchDTO{
			CandidateID:              current.CandidateID.String(),
			DisplayName:              current.DisplayName,
			Score:                    current.Score.Float64(),
			SkillOverlap:             current.SkillOverlap,
			RoleOverlap:              current.RoleOverlap,
			ExperienceGapAppropriate: current.ExperienceGapAppropriate,
		}
	}

	return view
}

func (m *MatchSessionManager) publish(event shared.Event) {
	if m.publisher == nil {
		return
	}
	_ = m.publisher.Publish(event)
}

func thresholdOf(q query.GetMatchesQuery) float64 {
	if q.Threshold != nil {
		return *q.Threshold
	}
	return matching.DefaultThreshold
}
