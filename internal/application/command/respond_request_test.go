package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

func seedPendingRequest(t *testing.T, requests *memRequests) *mentorship.Request {
	t.Helper()
	request, err := mentorship.NewRequest(mentorship.NewRequestParams{
		ID:          "req-1",
		SeekerID:    "seeker-1",
		CandidateID: "cand-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, requests.Create(context.Background(), request))
	return request
}

func TestRespondToRequest_Accept(t *testing.T) {
	requests := newMemRequests()
	publisher := &capturingPublisher{}
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), publisher)
	seedPendingRequest(t, requests)

	result, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusAccepted,
	})

	assert.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Equal(t, mentorship.StatusAccepted, result.Request.Status)
	assert.NotNil(t, result.Request.RespondedAt)

	stored, err := requests.GetByID(context.Background(), "req-1")
	assert.NoError(t, err)
	assert.Equal(t, mentorship.StatusAccepted, stored.Status)

	assert.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventMentorshipAccepted, publisher.events[0].EventType())
}

func TestRespondToRequest_DeclineEmitsDeclinedEvent(t *testing.T) {
	requests := newMemRequests()
	publisher := &capturingPublisher{}
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), publisher)
	seedPendingRequest(t, requests)

	result, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusDeclined,
	})

	assert.NoError(t, err)
	assert.Equal(t, mentorship.StatusDeclined, result.Request.Status)
	assert.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventMentorshipDeclined, publisher.events[0].EventType())
}

func TestRespondToRequest_RepeatedAnswerIsNoOp(t *testing.T) {
	requests := newMemRequests()
	publisher := &capturingPublisher{}
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), publisher)
	seedPendingRequest(t, requests)

	cmd := RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusAccepted,
	}

	_, err := handler.Handle(context.Background(), cmd)
	assert.NoError(t, err)

	repeat, err := handler.Handle(context.Background(), cmd)
	assert.NoError(t, err)
	assert.True(t, repeat.NoOp)
	assert.Equal(t, mentorship.StatusAccepted, repeat.Request.Status)

	// Only the first answer produced an event.
	assert.Len(t, publisher.events, 1)
}

func TestRespondToRequest_ConflictingAnswerRejected(t *testing.T) {
	requests := newMemRequests()
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), nil)
	seedPendingRequest(t, requests)

	_, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusAccepted,
	})
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusDeclined,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestRespondToRequest_SeekerCannotAnswer(t *testing.T) {
	requests := newMemRequests()
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), nil)
	seedPendingRequest(t, requests)

	_, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "seeker-1",
		Status:    mentorship.StatusAccepted,
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorizedTransition)

	// The request is untouched.
	stored, err := requests.GetByID(context.Background(), "req-1")
	assert.NoError(t, err)
	assert.True(t, stored.IsPending())
}

func TestRespondToRequest_PendingIsNotATarget(t *testing.T) {
	requests := newMemRequests()
	handler := NewRespondToRequestHandler(requests, block.NewGate(newMemBlocks()), nil)
	seedPendingRequest(t, requests)

	_, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusPending,
	})
	assert.Error(t, err)
}

func TestRespondToRequest_BlockedPairVetoed(t *testing.T) {
	requests := newMemRequests()
	blocks := newMemBlocks()
	gate := block.NewGate(blocks)
	publisher := &capturingPublisher{}
	handler := NewRespondToRequestHandler(requests, gate, publisher)
	seedPendingRequest(t, requests)

	// The block appears after the request was created: the answer
	// must still be vetoed.
	_, err := gate.Block(context.Background(), "cand-1", "seeker-1")
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusAccepted,
	})
	assert.ErrorIs(t, err, shared.ErrBlockedPair)

	stored, err := requests.GetByID(context.Background(), "req-1")
	assert.NoError(t, err)
	assert.True(t, stored.IsPending(), "a vetoed answer must not transition the request")
	assert.Empty(t, publisher.events)
}

func TestRespondToRequest_UnblockReopensAnswer(t *testing.T) {
	requests := newMemRequests()
	gate := block.NewGate(newMemBlocks())
	handler := NewRespondToRequestHandler(requests, gate, nil)
	seedPendingRequest(t, requests)

	_, err := gate.Block(context.Background(), "seeker-1", "cand-1")
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusDeclined,
	})
	assert.ErrorIs(t, err, shared.ErrBlockedPair)

	assert.NoError(t, gate.Unblock(context.Background(), "seeker-1", "cand-1"))

	result, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "req-1",
		ActorID:   "cand-1",
		Status:    mentorship.StatusDeclined,
	})
	assert.NoError(t, err)
	assert.Equal(t, mentorship.StatusDeclined, result.Request.Status)
}

func TestRespondToRequest_UnknownRequest(t *testing.T) {
	handler := NewRespondToRequestHandler(newMemRequests(), block.NewGate(newMemBlocks()), nil)

	_, err := handler.Handle(context.Background(), RespondToRequestCommand{
		RequestID: "ghost",
		ActorID:   "cand-1",
		Status:    mentorship.StatusAccepted,
	})
	assert.ErrorIs(t, err, shared.ErrRequestNotFound)
}
