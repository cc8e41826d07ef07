// Package matching содержит ядро подбора наставников: скоринг совместимости,
// ранжирование кандидатов и очередь просмотра результатов.
//
// Философия подбора: оценка - это взвешенное пересечение того, что ищущий
// хочет освоить, с тем, что кандидат умеет и кем работает. Никаких скрытых
// факторов: одинаковый вход всегда даёт одинаковую оценку.
package matching

import (
	"math"

	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHTS
// ══════════════════════════════════════════════════════════════════════════════

// Weights - веса факторов итоговой оценки.
// Сумма весов не валидируется: исторические конфигурации расходятся,
// и выбор остаётся за вызывающей стороной.
type Weights struct {
	// Skill - вес пересечения навыков.
	Skill float64

	// Role - вес пересечения ролей.
	Role float64
}

// DefaultWeights возвращает веса по умолчанию (0.7/0.3).
func DefaultWeights() Weights {
	return Weights{
		Skill: 0.7,
		Role:  0.3,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RESULT
// ══════════════════════════════════════════════════════════════════════════════

// MatchResult представляет результат оценки одного кандидата.
// Создаётся заново при каждом вызове ранжирования и не мутируется.
type MatchResult struct {
	// CandidateID - ID кандидата.
	CandidateID shared.PartyID

	// DisplayName - имя кандидата для отображения.
	DisplayName string

	// SkillOverlap - количество совпавших навыков.
	SkillOverlap int

	// RoleOverlap - количество совпавших ролей.
	RoleOverlap int

	// SkillScore - доля покрытия желаемых навыков (0-1).
	SkillScore float64

	// RoleScore - доля покрытия целевых ролей (0-1).
	RoleScore float64

	// Score - итоговая оценка совместимости (0-100, два знака).
	Score shared.Percent

	// ExperienceGapAppropriate - уровень кандидата не ниже уровня ищущего.
	ExperienceGapAppropriate bool
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORER
// ══════════════════════════════════════════════════════════════════════════════

// Score вычисляет оценку совместимости ищущего и кандидата.
// Чистая детерминированная функция: без побочных эффектов и без ошибок.
// Отсутствующие наборы атрибутов трактуются как пустые множества.
//
// Пустой список желаемых навыков даёт SkillScore 0 - "предпочтений нет"
// не означает "подходит любой". Аналогично для целевых ролей.
func Score(seeker *profile.Seeker, candidate *profile.Candidate, weights Weights) MatchResult {
	result := MatchResult{
		CandidateID: candidate.ID,
		DisplayName: candidate.DisplayName,
	}

	desired := NewTagSet(seeker.DesiredSkills)
	if !desired.IsEmpty() {
		result.SkillOverlap = desired.OverlapCount(candidate.Skills)
		result.SkillScore = float64(result.SkillOverlap) / float64(desired.Len())
	}

	targetRoles := NewTagSet(seeker.TargetRoles)
	if !targetRoles.IsEmpty() {
		result.RoleOverlap = targetRoles.OverlapCount(candidate.Roles)
		result.RoleScore = float64(result.RoleOverlap) / float64(targetRoles.Len())
	}

	composite := (weights.Skill*result.SkillScore + weights.Role*result.RoleScore) * 100
	result.Score = shared.Percent(roundTwoDecimals(composite))

	result.ExperienceGapAppropriate = candidate.Experience.AtLeast(seeker.Experience)

	return result
}

// roundTwoDecimals округляет до двух знаков после запятой.
func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
