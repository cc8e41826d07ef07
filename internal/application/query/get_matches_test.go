package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

type stubProfiles struct {
	seekers    map[shared.PartyID]*profile.Seeker
	candidates []*profile.Candidate
	listCalls  int
}

func (s *stubProfiles) GetSeeker(_ context.Context, id shared.PartyID) (*profile.Seeker, error) {
	seeker, ok := s.seekers[id]
	if !ok {
		return nil, shared.ErrSeekerNotFound
	}
	return seeker, nil
}

func (s *stubProfiles) GetCandidate(_ context.Context, id shared.PartyID) (*profile.Candidate, error) {
	for _, c := range s.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrCandidateNotFound
}

func (s *stubProfiles) ListEligibleCandidates(_ context.Context, filter profile.CandidateFilter) ([]*profile.Candidate, error) {
	s.listCalls++
	out := make([]*profile.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if !c.Eligible() {
			continue
		}
		if filter.Location != "" && c.Location != filter.Location {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type openGate struct{}

func (openGate) IsBlocked(_ context.Context, _, _ shared.PartyID) (bool, error) {
	return false, nil
}

type memCache struct {
	entries map[shared.PartyID]matching.MatchResultList
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[shared.PartyID]matching.MatchResultList)}
}

func (c *memCache) Get(_ context.Context, seekerID shared.PartyID) (matching.MatchResultList, bool, error) {
	results, ok := c.entries[seekerID]
	return results, ok, nil
}

func (c *memCache) Set(_ context.Context, seekerID shared.PartyID, results matching.MatchResultList, _ time.Duration) error {
	c.entries[seekerID] = results
	return nil
}

func (c *memCache) Invalidate(_ context.Context, seekerID shared.PartyID) error {
	delete(c.entries, seekerID)
	return nil
}

func testSeeker(t *testing.T) *profile.Seeker {
	t.Helper()
	seeker, err := profile.NewSeeker(profile.NewSeekerParams{
		ID:            "seeker-1",
		DisplayName:   "Aruzhan",
		DesiredSkills: []string{"Linux", "Cloud Security"},
		TargetRoles:   []string{"SOC Analyst"},
		Experience:    profile.ExperienceBeginner,
	})
	assert.NoError(t, err)
	return seeker
}

func testCandidate(t *testing.T, id string, skills []string, roles []string) *profile.Candidate {
	t.Helper()
	candidate, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:          id,
		DisplayName: "Mentor " + id,
		Skills:      skills,
		Roles:       roles,
		Experience:  profile.ExperienceAdvanced,
		Verified:    true,
		Active:      true,
	})
	assert.NoError(t, err)
	return candidate
}

func newTestHandler(t *testing.T, profiles *stubProfiles, cache MatchCache) *GetMatchesHandler {
	t.Helper()
	backend := NewLocalBackend(profiles, matching.NewRanker(openGate{}))
	return NewGetMatchesHandler(GetMatchesHandlerConfig{
		Profiles: profiles,
		Backend:  backend,
		Cache:    cache,
		Defaults: matching.RankOptions{
			Weights:   matching.DefaultWeights(),
			Threshold: matching.DefaultThreshold,
			Limit:     10,
		},
	})
}

func TestGetMatches_RanksAboveThreshold(t *testing.T) {
	profiles := &stubProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": testSeeker(t)},
		candidates: []*profile.Candidate{
			testCandidate(t, "full", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
			testCandidate(t, "half", []string{"Linux"}, []string{"SOC Analyst"}),
			testCandidate(t, "none", []string{"Haskell"}, []string{"Compiler Engineer"}),
		},
	}
	handler := newTestHandler(t, profiles, nil)

	result, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)

	// "none" scores 0 and falls below the threshold.
	assert.Len(t, result.Matches, 2)
	assert.Equal(t, "full", result.Matches[0].CandidateID)
	assert.Equal(t, 100.0, result.Matches[0].Score)
	assert.Equal(t, "half", result.Matches[1].CandidateID)
	assert.False(t, result.FromCache)
}

func TestGetMatches_UnknownSeeker(t *testing.T) {
	profiles := &stubProfiles{seekers: map[shared.PartyID]*profile.Seeker{}}
	handler := newTestHandler(t, profiles, nil)

	_, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrSeekerNotFound)
}

func TestGetMatches_EmptyResultIsNotAnError(t *testing.T) {
	profiles := &stubProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": testSeeker(t)},
		candidates: []*profile.Candidate{
			testCandidate(t, "none", []string{"Haskell"}, []string{"Compiler Engineer"}),
		},
	}
	handler := newTestHandler(t, profiles, nil)

	result, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestGetMatches_SecondCallServedFromCache(t *testing.T) {
	profiles := &stubProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": testSeeker(t)},
		candidates: []*profile.Candidate{
			testCandidate(t, "full", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
		},
	}
	cache := newMemCache()
	handler := newTestHandler(t, profiles, cache)

	first, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Matches, second.Matches)
	assert.Equal(t, 1, profiles.listCalls)
}

func TestGetMatches_OverridesBypassCache(t *testing.T) {
	profiles := &stubProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": testSeeker(t)},
		candidates: []*profile.Candidate{
			testCandidate(t, "full", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
			testCandidate(t, "half", []string{"Linux"}, []string{"SOC Analyst"}),
		},
	}
	cache := newMemCache()
	handler := newTestHandler(t, profiles, cache)

	_, err := handler.Handle(context.Background(), GetMatchesQuery{SeekerID: "seeker-1"})
	assert.NoError(t, err)

	threshold := 90.0
	strict, err := handler.Handle(context.Background(), GetMatchesQuery{
		SeekerID:  "seeker-1",
		Threshold: &threshold,
	})
	assert.NoError(t, err)
	assert.False(t, strict.FromCache)
	assert.Len(t, strict.Matches, 1)
	assert.Equal(t, "full", strict.Matches[0].CandidateID)
}

func TestGetMatches_LimitOverride(t *testing.T) {
	profiles := &stubProfiles{
		seekers: map[shared.PartyID]*profile.Seeker{"seeker-1": testSeeker(t)},
		candidates: []*profile.Candidate{
			testCandidate(t, "a", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
			testCandidate(t, "b", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
			testCandidate(t, "c", []string{"Linux", "Cloud Security"}, []string{"SOC Analyst"}),
		},
	}
	handler := newTestHandler(t, profiles, nil)

	limit := 2
	result, err := handler.Handle(context.Background(), GetMatchesQuery{
		SeekerID: "seeker-1",
		Limit:    &limit,
	})
	assert.NoError(t, err)
	assert.Len(t, result.Matches, 2)
}

func TestGetMatches_InvalidThreshold(t *testing.T) {
	handler := newTestHandler(t, &stubProfiles{}, nil)

	threshold := 150.0
	_, err := handler.Handle(context.Background(), GetMatchesQuery{
		SeekerID:  "seeker-1",
		Threshold: &threshold,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidThreshold)
}
