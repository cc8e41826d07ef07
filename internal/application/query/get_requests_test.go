package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

type stubRequests struct {
	requests []*mentorship.Request
}

func (s *stubRequests) Create(_ context.Context, r *mentorship.Request) error {
	s.requests = append(s.requests, r)
	return nil
}

func (s *stubRequests) GetByID(_ context.Context, id string) (*mentorship.Request, error) {
	for _, r := range s.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, shared.ErrRequestNotFound
}

func (s *stubRequests) Update(_ context.Context, _ *mentorship.Request) error { return nil }

func (s *stubRequests) FindPendingByPair(_ context.Context, seekerID, candidateID shared.PartyID) (*mentorship.Request, error) {
	for _, r := range s.requests {
		if r.SeekerID == seekerID && r.CandidateID == candidateID && r.IsPending() {
			return r, nil
		}
	}
	return nil, shared.ErrRequestNotFound
}

func (s *stubRequests) ListForParty(_ context.Context, partyID shared.PartyID, role mentorship.Role, opts mentorship.ListOptions) ([]*mentorship.Request, error) {
	out := make([]*mentorship.Request, 0)
	for _, r := range s.requests {
		if role == mentorship.RoleSeeker && r.SeekerID != partyID {
			continue
		}
		if role == mentorship.RoleCandidate && r.CandidateID != partyID {
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRequests) CountPendingForCandidate(_ context.Context, candidateID shared.PartyID) (int, error) {
	count := 0
	for _, r := range s.requests {
		if r.CandidateID == candidateID && r.IsPending() {
			count++
		}
	}
	return count, nil
}

func seedRequest(t *testing.T, id, seekerID, candidateID string, status mentorship.Status) *mentorship.Request {
	t.Helper()
	request, err := mentorship.NewRequest(mentorship.NewRequestParams{
		ID:          id,
		SeekerID:    shared.PartyID(seekerID),
		CandidateID: shared.PartyID(candidateID),
	})
	assert.NoError(t, err)
	if status != mentorship.StatusPending {
		assert.NoError(t, request.Transition(status, shared.PartyID(candidateID)))
	}
	return request
}

func TestGetRequests_IncomingForCandidate(t *testing.T) {
	repo := &stubRequests{requests: []*mentorship.Request{
		seedRequest(t, "r1", "seeker-1", "cand-1", mentorship.StatusPending),
		seedRequest(t, "r2", "seeker-2", "cand-1", mentorship.StatusAccepted),
		seedRequest(t, "r3", "seeker-1", "cand-2", mentorship.StatusPending),
	}}
	handler := NewGetRequestsHandler(repo, nil)

	result, err := handler.Handle(context.Background(), GetRequestsQuery{
		PartyID: "cand-1",
		Role:    "candidate",
	})

	assert.NoError(t, err)
	assert.Len(t, result.Requests, 2)
	assert.Equal(t, 1, result.PendingCount)
}

func TestGetRequests_OutgoingForSeekerWithStatusFilter(t *testing.T) {
	repo := &stubRequests{requests: []*mentorship.Request{
		seedRequest(t, "r1", "seeker-1", "cand-1", mentorship.StatusPending),
		seedRequest(t, "r2", "seeker-1", "cand-2", mentorship.StatusDeclined),
	}}
	handler := NewGetRequestsHandler(repo, nil)

	result, err := handler.Handle(context.Background(), GetRequestsQuery{
		PartyID: "seeker-1",
		Role:    "seeker",
		Status:  "declined",
	})

	assert.NoError(t, err)
	assert.Len(t, result.Requests, 1)
	assert.Equal(t, "r2", result.Requests[0].ID)
	assert.Equal(t, "declined", result.Requests[0].Status)
	assert.NotNil(t, result.Requests[0].RespondedAt)
	assert.Zero(t, result.PendingCount, "pending count is a candidate-side concern")
}

func TestGetRequests_UnknownRoleRejected(t *testing.T) {
	handler := NewGetRequestsHandler(&stubRequests{}, nil)

	_, err := handler.Handle(context.Background(), GetRequestsQuery{
		PartyID: "seeker-1",
		Role:    "observer",
	})
	assert.Error(t, err)
}

func TestGetRequests_UnknownStatusRejected(t *testing.T) {
	handler := NewGetRequestsHandler(&stubRequests{}, nil)

	_, err := handler.Handle(context.Background(), GetRequestsQuery{
		PartyID: "seeker-1",
		Role:    "seeker",
		Status:  "maybe",
	})
	assert.Error(t, err)
}
