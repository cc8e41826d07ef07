package saga

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/application/command"
	"github.com/cybermatch/cybermatch-hub/internal/application/query"
	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

type fixtureProfiles struct {
	seekers    map[shared.PartyID]*profile.Seeker
	candidates []*profile.Candidate
}

func (f *fixtureProfiles) GetSeeker(_ context.Context, id shared.PartyID) (*profile.Seeker, error) {
	s, ok := f.seekers[id]
	if !ok {
		return nil, shared.ErrSeekerNotFound
	}
	return s, nil
}

func (f *fixtureProfiles) GetCandidate(_ context.Context, id shared.PartyID) (*profile.Candidate, error) {
	for _, c := range f.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrCandidateNotFound
}

func (f *fixtureProfiles) ListEligibleCandidates(_ context.Context, _ profile.CandidateFilter) ([]*profile.Candidate, error) {
	out := make([]*profile.Candidate, 0, len(f.candidates))
	for _, c := range f.candidates {
		if c.Eligible() {
			out = append(out, c)
		}
	}
	return out, nil
}

type fixtureRequests struct {
	created []*mentorship.Request
}

func (f *fixtureRequests) Create(_ context.Context, r *mentorship.Request) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fixtureRequests) GetByID(_ context.Context, _ string) (*mentorship.Request, error) {
	return nil, shared.ErrRequestNotFound
}

func (f *fixtureRequests) Update(_ context.Context, _ *mentorship.Request) error { return nil }

func (f *fixtureRequests) FindPendingByPair(_ context.Context, _, _ shared.PartyID) (*mentorship.Request, error) {
	return nil, shared.ErrRequestNotFound
}

func (f *fixtureRequests) ListForParty(_ context.Context, _ shared.PartyID, _ mentorship.Role, _ mentorship.ListOptions) ([]*mentorship.Request, error) {
	return nil, nil
}

func (f *fixtureRequests) CountPendingForCandidate(_ context.Context, _ shared.PartyID) (int, error) {
	return 0, nil
}

type fixtureBlocks struct{}

func (fixtureBlocks) Insert(_ context.Context, _ *block.Relation) error             { return nil }
func (fixtureBlocks) Delete(_ context.Context, _, _ shared.PartyID) error           { return nil }
func (fixtureBlocks) ExistsBetween(_ context.Context, _, _ shared.PartyID) (bool, error) {
	return false, nil
}
func (fixtureBlocks) ListInvolving(_ context.Context, _ shared.PartyID) ([]*block.Relation, error) {
	return nil, nil
}

type recordingPublisher struct {
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) byType(eventType shared.EventType) []shared.Event {
	out := make([]shared.Event, 0)
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newFixture(t *testing.T, candidateIDs ...string) (*MatchSessionManager, *fixtureRequests, *recordingPublisher) {
	t.Helper()

	seeker, err := profile.NewSeeker(profile.NewSeekerParams{
		ID:            "seeker-1",
		DisplayName:   "Aruzhan",
		DesiredSkills: []string{"Linux", "Networking"},
		TargetRoles:   []string{"SOC Analyst"},
	})
	assert.NoError(t, err)

	profiles := &fixtureProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": seeker},
	}
	for _, id := range candidateIDs {
		candidate, err := profile.NewCandidate(profile.NewCandidateParams{
			ID:          id,
			DisplayName: "Mentor " + id,
			Skills:      []string{"Linux", "Networking"},
			Roles:       []string{"SOC Analyst"},
			Experience:  profile.ExperienceAdvanced,
			Verified:    true,
			Active:      true,
		})
		assert.NoError(t, err)
		profiles.candidates = append(profiles.candidates, candidate)
	}

	gate := block.NewGate(fixtureBlocks{})
	publisher := &recordingPublisher{}

	matches := query.NewGetMatchesHandler(query.GetMatchesHandlerConfig{
		Profiles: profiles,
		Backend:  query.NewLocalBackend(profiles, matching.NewRanker(gate)),
		Defaults: matching.RankOptions{
			Weights:   matching.DefaultWeights(),
			Threshold: matching.DefaultThreshold,
			Limit:     10,
		},
	})

	requests := &fixtureRequests{}
	requesting := command.NewRequestMentorshipHandler(profiles, requests, gate, publisher)

	return NewMatchSessionManager(matches, requesting, publisher), requests, publisher
}

func TestMatchSession_WalkTheDeck(t *testing.T) {
	manager, _, publisher := newFixture(t, "a", "b")

	view, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	assert.Equal(t, "active", view.State)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Position)
	assert.NotNil(t, view.Current)
	assert.Len(t, publisher.byType(shared.EventMatchSessionStarted), 1)

	view, err = manager.Advance(context.Background(), "seeker-1")
	assert.NoError(t, err)
	assert.Equal(t, "active", view.State)
	assert.Equal(t, 2, view.Position)
	assert.Equal(t, 1, view.Remaining)

	view, err = manager.Advance(context.Background(), "seeker-1")
	assert.NoError(t, err)
	assert.Equal(t, "exhausted", view.State)
	assert.Nil(t, view.Current)
	assert.Len(t, publisher.byType(shared.EventMatchSessionExhausted), 1)

	// Current on an exhausted session is a typed error.
	_, err = manager.Current(context.Background(), "seeker-1")
	assert.ErrorIs(t, err, shared.ErrQueueExhausted)

	// Advancing an exhausted session stays a no-op: no second event.
	_, err = manager.Advance(context.Background(), "seeker-1")
	assert.NoError(t, err)
	assert.Len(t, publisher.byType(shared.EventMatchSessionExhausted), 1)
}

func TestMatchSession_NoSession(t *testing.T) {
	manager, _, _ := newFixture(t, "a")

	_, err := manager.Current(context.Background(), "seeker-1")
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)

	_, err = manager.Advance(context.Background(), "seeker-1")
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)
}

func TestMatchSession_EmptyDeck(t *testing.T) {
	manager, _, _ := newFixture(t)

	_, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.ErrorIs(t, err, shared.ErrNoMatchesFound)

	// The failed start left no session behind.
	_, err = manager.Current(context.Background(), "seeker-1")
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)
}

func TestMatchSession_ActOnCurrentRequestsAndAdvances(t *testing.T) {
	manager, requests, _ := newFixture(t, "a", "b")

	_, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)

	result, view, err := manager.ActOnCurrent(context.Background(), "seeker-1", "corr-1")
	assert.NoError(t, err)
	assert.NotNil(t, result.Request)
	assert.Len(t, requests.created, 1)
	assert.Equal(t, 2, view.Position)

	// The request targets the candidate that was under the cursor.
	assert.Equal(t, requests.created[0].CandidateID.String(), "a")
}

func TestMatchSession_RestartReplacesDeck(t *testing.T) {
	manager, _, _ := newFixture(t, "a", "b")

	_, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	_, err = manager.Advance(context.Background(), "seeker-1")
	assert.NoError(t, err)

	view, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, view.Position, "a restart rewinds to the top of the deck")
}

func TestMatchSession_ConcurrentCallsSerialize(t *testing.T) {
	const deckSize = 40
	ids := make([]string, deckSize)
	for i := range ids {
		ids[i] = fmt.Sprintf("c-%02d", i)
	}
	manager, _, publisher := newFixture(t, ids...)

	_, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)

	// Double-tapped advance and a polling Current on the same session
	// must serialize on the session lock instead of racing on the cursor.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < deckSize; j++ {
				_, _ = manager.Advance(context.Background(), "seeker-1")
				_, _ = manager.Current(context.Background(), "seeker-1")
			}
		}()
	}
	wg.Wait()

	view, err := manager.Advance(context.Background(), "seeker-1")
	assert.NoError(t, err)
	assert.Equal(t, "exhausted", view.State)
	assert.Equal(t, 0, view.Remaining)
	assert.Len(t, publisher.byType(shared.EventMatchSessionExhausted), 1,
		"exhaustion is announced exactly once regardless of callers")
}

func TestMatchSession_EndSession(t *testing.T) {
	manager, _, _ := newFixture(t, "a")

	_, err := manager.StartSession(context.Background(), query.GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)

	manager.EndSession(context.Background(), "seeker-1")

	_, err = manager.Current(context.Background(), "seeker-1")
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)
}
