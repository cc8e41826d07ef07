package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

func newRequestHandler() (*RequestMentorshipHandler, *memProfiles, *memRequests, *memBlocks, *capturingPublisher) {
	profiles := newMemProfiles()
	requests := newMemRequests()
	blocks := newMemBlocks()
	publisher := &capturingPublisher{}
	handler := NewRequestMentorshipHandler(profiles, requests, block.NewGate(blocks), publisher)
	return handler, profiles, requests, blocks, publisher
}

func TestRequestMentorship_CreatesPendingRequest(t *testing.T) {
	handler, profiles, requests, _, publisher := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))
	profiles.addCandidate(mustCandidate("cand-1", true, true))

	result, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})

	assert.NoError(t, err)
	assert.False(t, result.AlreadyRequested)
	assert.Equal(t, mentorship.StatusPending, result.Request.Status)
	assert.NotEmpty(t, result.Request.ID)
	assert.Equal(t, 1, requests.createCt)

	assert.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventMentorshipRequested, publisher.events[0].EventType())
}

func TestRequestMentorship_DuplicatePendingIsSignalNotError(t *testing.T) {
	handler, profiles, requests, _, publisher := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))
	profiles.addCandidate(mustCandidate("cand-1", true, true))

	first, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.NoError(t, err)

	second, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.NoError(t, err)
	assert.True(t, second.AlreadyRequested)
	assert.Equal(t, first.Request.ID, second.Request.ID)

	// No second row, no second event.
	assert.Equal(t, 1, requests.createCt)
	assert.Len(t, publisher.events, 1)
}

func TestRequestMentorship_BlockedPairIsVetoed(t *testing.T) {
	handler, profiles, requests, blocks, _ := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))
	profiles.addCandidate(mustCandidate("cand-1", true, true))

	rel, err := block.NewRelation("cand-1", "seeker-1")
	assert.NoError(t, err)
	assert.NoError(t, blocks.Insert(context.Background(), rel))

	// The candidate blocked the seeker; the veto is symmetric.
	_, err = handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.ErrorIs(t, err, shared.ErrBlockedPair)
	assert.Equal(t, 0, requests.createCt)
}

func TestRequestMentorship_SelfRequestRejected(t *testing.T) {
	handler, profiles, _, _, _ := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))

	_, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "seeker-1",
	})
	assert.ErrorIs(t, err, shared.ErrSelfRequest)
}

func TestRequestMentorship_UnknownSeeker(t *testing.T) {
	handler, profiles, _, _, _ := newRequestHandler()
	profiles.addCandidate(mustCandidate("cand-1", true, true))

	_, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "ghost",
		CandidateID: "cand-1",
	})
	assert.ErrorIs(t, err, shared.ErrSeekerNotFound)
}

func TestRequestMentorship_IneligibleCandidateRejected(t *testing.T) {
	handler, profiles, _, _, _ := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))
	profiles.addCandidate(mustCandidate("cand-1", true, false)) // deactivated

	_, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRequestMentorship_NewRequestAllowedAfterDecline(t *testing.T) {
	handler, profiles, _, _, _ := newRequestHandler()
	profiles.addSeeker(mustSeeker("seeker-1"))
	profiles.addCandidate(mustCandidate("cand-1", true, true))

	first, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.NoError(t, err)

	// Candidate declines; the pair no longer has an open request.
	responder := NewRespondToRequestHandler(handler.requests, handler.gate, nil)
	_, err = responder.Handle(context.Background(), RespondToRequestCommand{
		RequestID: first.Request.ID,
		ActorID:   "cand-1",
		Status:    mentorship.StatusDeclined,
	})
	assert.NoError(t, err)

	second, err := handler.Handle(context.Background(), RequestMentorshipCommand{
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.NoError(t, err)
	assert.False(t, second.AlreadyRequested)
	assert.NotEqual(t, first.Request.ID, second.Request.ID)
}
