package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
)

func newSeeker(t *testing.T, skills, roles []string) *profile.Seeker {
	t.Helper()
	s, err := profile.NewSeeker(profile.NewSeekerParams{
		ID:            "seeker-1",
		DisplayName:   "Alice",
		DesiredSkills: skills,
		TargetRoles:   roles,
		Experience:    profile.ExperienceBeginner,
	})
	assert.NoError(t, err)
	return s
}

func newCandidate(t *testing.T, id string, skills, roles []string) *profile.Candidate {
	t.Helper()
	c, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:          id,
		DisplayName: "Mentor " + id,
		Skills:      skills,
		Roles:       roles,
		Experience:  profile.ExperienceAdvanced,
		Verified:    true,
		Active:      true,
	})
	assert.NoError(t, err)
	return c
}

func TestScore_FullOverlap(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst"})
	candidate := newCandidate(t, "mentor-1",
		[]string{"Linux", "Cloud Security", "Firewall"},
		[]string{"Security Analyst"})

	result := Score(seeker, candidate, Weights{Skill: 0.7, Role: 0.3})

	assert.Equal(t, 2, result.SkillOverlap)
	assert.Equal(t, 1, result.RoleOverlap)
	assert.InDelta(t, 1.0, result.SkillScore, 1e-9)
	assert.InDelta(t, 1.0, result.RoleScore, 1e-9)
	assert.Equal(t, 100.0, result.Score.Float64())
	assert.True(t, result.ExperienceGapAppropriate)
}

func TestScore_NoOverlap(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst"})
	candidate := newCandidate(t, "mentor-2", []string{"Firewall"}, nil)

	result := Score(seeker, candidate, Weights{Skill: 0.7, Role: 0.3})

	assert.Equal(t, 0, result.SkillOverlap)
	assert.Equal(t, 0, result.RoleOverlap)
	assert.Equal(t, 0.0, result.Score.Float64())
}

func TestScore_EmptyDesiredSkillsGivesZeroSkillScore(t *testing.T) {
	// "No preference stated" must not silently reward candidates.
	seeker := newSeeker(t, nil, []string{"Security Analyst"})
	candidate := newCandidate(t, "mentor-3",
		[]string{"Linux", "Cloud Security"},
		[]string{"Security Analyst"})

	result := Score(seeker, candidate, Weights{Skill: 0.7, Role: 0.3})

	assert.Equal(t, 0, result.SkillOverlap)
	assert.Equal(t, 0.0, result.SkillScore)
	assert.Equal(t, 30.0, result.Score.Float64())
}

func TestScore_CaseInsensitiveTags(t *testing.T) {
	seeker := newSeeker(t, []string{"LINUX", "cloud-security"}, []string{"security analyst"})
	candidate := newCandidate(t, "mentor-4",
		[]string{"linux", "Cloud Security"},
		[]string{"Security Analyst"})

	result := Score(seeker, candidate, DefaultWeights())

	assert.Equal(t, 2, result.SkillOverlap)
	assert.Equal(t, 1, result.RoleOverlap)
	assert.Equal(t, 100.0, result.Score.Float64())
}

func TestScore_PartialOverlapRounding(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security", "Forensics"}, []string{"Security Analyst"})
	candidate := newCandidate(t, "mentor-5", []string{"Linux"}, nil)

	result := Score(seeker, candidate, Weights{Skill: 0.7, Role: 0.3})

	// 0.7 * (1/3) * 100 = 23.333... rounded to two decimals.
	assert.Equal(t, 1, result.SkillOverlap)
	assert.Equal(t, 23.33, result.Score.Float64())
}

func TestScore_Deterministic(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, []string{"Security Analyst"})
	candidate := newCandidate(t, "mentor-6",
		[]string{"Linux", "Firewall"},
		[]string{"Security Analyst", "Pentester"})

	first := Score(seeker, candidate, DefaultWeights())
	second := Score(seeker, candidate, DefaultWeights())

	assert.Equal(t, first, second)
}

func TestScore_ExperienceGap(t *testing.T) {
	seeker, err := profile.NewSeeker(profile.NewSeekerParams{
		ID:         "seeker-2",
		Experience: profile.ExperienceAdvanced,
	})
	assert.NoError(t, err)

	junior, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:         "mentor-7",
		Experience: profile.ExperienceBeginner,
		Verified:   true,
		Active:     true,
	})
	assert.NoError(t, err)

	result := Score(seeker, junior, DefaultWeights())
	assert.False(t, result.ExperienceGapAppropriate)

	peer, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:         "mentor-8",
		Experience: profile.ExperienceAdvanced,
		Verified:   true,
		Active:     true,
	})
	assert.NoError(t, err)

	result = Score(seeker, peer, DefaultWeights())
	assert.True(t, result.ExperienceGapAppropriate)
}

func TestScore_DuplicateCandidateTagsCountOnce(t *testing.T) {
	seeker := newSeeker(t, []string{"Linux", "Cloud Security"}, nil)
	candidate := newCandidate(t, "mentor-9", []string{"Linux", "linux", "LINUX"}, nil)

	result := Score(seeker, candidate, Weights{Skill: 1.0, Role: 0.0})

	assert.Equal(t, 1, result.SkillOverlap)
	assert.Equal(t, 50.0, result.Score.Float64())
}
