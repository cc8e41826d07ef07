package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// stubGate is a BlockGate backed by an in-memory pair set.
type stubGate struct {
	blocked map[string]bool
	err     error
}

func (g *stubGate) IsBlocked(_ context.Context, a, b shared.PartyID) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.blocked == nil {
		return false, nil
	}
	return g.blocked[pairKey(a, b)], nil
}

func pairKey(a, b shared.PartyID) string {
	if a < b {
		return string(a) + ":" + string(b)
	}
	return string(b) + ":" + string(a)
}

func eligibleCandidate(t *testing.T, id string, skills, roles []string) *profile.Candidate {
	t.Helper()
	c, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:         id,
		Skills:     skills,
		Roles:      roles,
		Experience: profile.ExperienceAdvanced,
		Verified:   true,
		Active:     true,
	})
	assert.NoError(t, err)
	return c
}

func TestRanker_FiltersByThresholdAndSorts(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst"})

	candidates := []*profile.Candidate{
		eligibleCandidate(t, "mentor-b", []string{"Linux"}, []string{"Security Analyst"}),
		eligibleCandidate(t, "mentor-a", []string{"Linux", "Cloud Security"}, []string{"Security Analyst"}),
		eligibleCandidate(t, "mentor-c", []string{"Firewall"}, nil), // score 0, below threshold
	}

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker, candidates, DefaultRankOptions())

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, shared.PartyID("mentor-a"), results[0].CandidateID)
	assert.Equal(t, shared.PartyID("mentor-b"), results[1].CandidateID)
	assert.Equal(t, 100.0, results[0].Score.Float64())
}

func TestRanker_TieBreaks(t *testing.T) {
	// Equal composite scores: higher skill overlap first, then higher role
	// overlap, then candidate ID ascending.
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst", "Pentester"})
	opts := RankOptions{Weights: Weights{Skill: 0.5, Role: 0.5}, Threshold: 10}

	candidates := []*profile.Candidate{
		// 0.5*0 + 0.5*1 = 50.00, role overlap 2
		eligibleCandidate(t, "mentor-roles", nil, []string{"Security Analyst", "Pentester"}),
		// 0.5*1 + 0.5*0 = 50.00, skill overlap 2
		eligibleCandidate(t, "mentor-skills", []string{"Linux", "Cloud Security"}, nil),
	}

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker, candidates, opts)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, shared.PartyID("mentor-skills"), results[0].CandidateID)
	assert.Equal(t, shared.PartyID("mentor-roles"), results[1].CandidateID)
}

func TestRanker_IDTieBreakIsAscending(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)
	opts := RankOptions{Weights: Weights{Skill: 1.0}, Threshold: 50}

	candidates := []*profile.Candidate{
		eligibleCandidate(t, "mentor-z", []string{"Linux"}, nil),
		eligibleCandidate(t, "mentor-a", []string{"Linux"}, nil),
	}

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker, candidates, opts)

	assert.NoError(t, err)
	assert.Equal(t, shared.PartyID("mentor-a"), results[0].CandidateID)
	assert.Equal(t, shared.PartyID("mentor-z"), results[1].CandidateID)
}

func TestRanker_ExcludesBlockedCandidates(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)

	candidates := []*profile.Candidate{
		eligibleCandidate(t, "mentor-blocked", []string{"Linux"}, nil),
		eligibleCandidate(t, "mentor-open", []string{"Linux"}, nil),
	}

	gate := &stubGate{blocked: map[string]bool{
		pairKey("seeker-1", "mentor-blocked"): true,
	}}

	ranker := NewRanker(gate)
	results, err := ranker.Rank(context.Background(), seeker, candidates,
		RankOptions{Weights: Weights{Skill: 1.0}, Threshold: 50})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, shared.PartyID("mentor-open"), results[0].CandidateID)
}

func TestRanker_SkipsIneligibleCandidates(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)

	unverified, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:     "mentor-unverified",
		Skills: []string{"Linux"},
		Active: true,
	})
	assert.NoError(t, err)

	inactive, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:       "mentor-inactive",
		Skills:   []string{"Linux"},
		Verified: true,
	})
	assert.NoError(t, err)

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker,
		[]*profile.Candidate{unverified, inactive, nil},
		RankOptions{Weights: Weights{Skill: 1.0}, Threshold: 0})

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestRanker_AppliesLimit(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)

	candidates := []*profile.Candidate{
		eligibleCandidate(t, "mentor-1", []string{"Linux"}, nil),
		eligibleCandidate(t, "mentor-2", []string{"Linux"}, nil),
		eligibleCandidate(t, "mentor-3", []string{"Linux"}, nil),
		eligibleCandidate(t, "mentor-4", []string{"Linux"}, nil),
	}

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker, candidates,
		RankOptions{Weights: Weights{Skill: 1.0}, Threshold: 50, Limit: 3})

	assert.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRanker_EmptyResultIsNotAnError(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)

	ranker := NewRanker(&stubGate{})
	results, err := ranker.Rank(context.Background(), seeker, nil, DefaultRankOptions())

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestRanker_Deterministic(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst"})

	candidates := []*profile.Candidate{
		eligibleCandidate(t, "mentor-1", []string{"Linux"}, []string{"Security Analyst"}),
		eligibleCandidate(t, "mentor-2", []string{"Cloud Security"}, []string{"Security Analyst"}),
		eligibleCandidate(t, "mentor-3", []string{"Linux", "Cloud Security"}, nil),
	}

	ranker := NewRanker(&stubGate{})

	first, err := ranker.Rank(context.Background(), seeker, candidates, DefaultRankOptions())
	assert.NoError(t, err)
	second, err := ranker.Rank(context.Background(), seeker, candidates, DefaultRankOptions())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRanker_InvalidThreshold(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)

	ranker := NewRanker(&stubGate{})
	_, err := ranker.Rank(context.Background(), seeker, nil,
		RankOptions{Weights: DefaultWeights(), Threshold: 150})

	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestRanker_PropagatesGateErrors(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux"}, nil)
	gateErr := errors.New("store unavailable")

	ranker := NewRanker(&stubGate{err: gateErr})
	_, err := ranker.Rank(context.Background(), seeker,
		[]*profile.Candidate{eligibleCandidate(t, "mentor-1", []string{"Linux"}, nil)},
		DefaultRankOptions())

	assert.ErrorIs(t, err, gateErr)
}
