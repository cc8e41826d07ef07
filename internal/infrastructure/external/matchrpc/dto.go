package matchrpc

import (
	"fmt"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DATA TRANSFER OBJECTS
// Wire format of the remote get_matches procedure. The remote side runs
// the same formula; rows arrive already scored and ordered.
// ══════════════════════════════════════════════════════════════════════════════

// GetMatchesRequestDTO is the request body of the get_matches call.
type GetMatchesRequestDTO struct {
	SeekerID  string  `json:"seeker_id"`
	Threshold float64 `json:"threshold"`
	Limit     int     `json:"limit,omitempty"`
	Location  string  `json:"location,omitempty"`
	NameQuery string  `json:"name_query,omitempty"`
}

// MatchRowDTO is one scored candidate row.
type MatchRowDTO struct {
	CandidateID  string  `json:"candidate_id"`
	DisplayName  string  `json:"display_name"`
	Score        float64 `json:"score"`
	SkillOverlap int     `json:"skill_overlap"`
	RoleOverlap  int     `json:"role_overlap"`
	SkillScore   float64 `json:"skill_score"`
	RoleScore    float64 `json:"role_score"`
	ExpGapOK     bool    `json:"experience_gap_appropriate"`
}

// APIErrorDTO is the error body the remote side returns on 4xx/5xx.
type APIErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return fmt.Sprintf("matchrpc: %s (%s)", e.Message, e.Code)
}

// ToMatchResults converts wire rows into domain results, preserving order.
func ToMatchResults(rows []MatchRowDTO) matching.MatchResultList {
	results := make(matching.MatchResultList, 0, len(rows))
	for _, row := range rows {
		results = append(results, matching.MatchResult{
			CandidateID:              shared.PartyID(row.CandidateID),
			DisplayName:              row.DisplayName,
			SkillOverlap:             row.SkillOverlap,
			RoleOverlap:              row.RoleOverlap,
			SkillScore:               row.SkillScore,
			RoleScore:                row.RoleScore,
			Score:                    shared.Percent(row.Score),
			ExperienceGapAppropriate: row.ExpGapOK,
		})
	}
	return results
}
