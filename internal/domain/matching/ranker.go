package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BLOCK GATE PORT
// ══════════════════════════════════════════════════════════════════════════════

// BlockGate проверяет, подавлено ли взаимодействие между двумя сторонами.
// Симметричен: блокировка в любую сторону исключает пару из подбора.
// Реализация живёт в домене block; здесь только потребляемый контракт.
type BlockGate interface {
	IsBlocked(ctx context.Context, a, b shared.PartyID) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANK OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// DefaultThreshold - минимальная оценка для попадания в выдачу.
const DefaultThreshold = 50.0

// RankOptions - параметры ранжирования.
type RankOptions struct {
	// Weights - веса факторов оценки.
	Weights Weights

	// Threshold - минимальная оценка (0-100) для попадания в выдачу.
	Threshold float64

	// Limit - максимальное количество результатов (0 = без ограничений).
	Limit int
}

// DefaultRankOptions возвращает параметры по умолчанию.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		Weights:   DefaultWeights(),
		Threshold: DefaultThreshold,
		Limit:     0,
	}
}

// Validate проверяет корректность параметров.
func (o RankOptions) Validate() error {
	if o.Threshold < 0 || o.Threshold > 100 {
		return shared.ErrInvalidThreshold
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKER
// Фильтрует, оценивает и упорядочивает кандидатов для одного ищущего.
// ══════════════════════════════════════════════════════════════════════════════

// Ranker ранжирует кандидатов по совместимости с ищущим.
type Ranker struct {
	gate BlockGate
}

// NewRanker создаёт Ranker с заданным блок-фильтром.
// Коллаборатор передаётся явно: никаких глобальных синглтонов.
func NewRanker(gate BlockGate) *Ranker {
	return &Ranker{gate: gate}
}

// Rank оценивает кандидатов и возвращает упорядоченную выдачу.
//
// Порядок шагов:
//  1. исключить кандидатов в блок-связи с ищущим (в любую сторону);
//  2. пропустить неверифицированных и неактивных;
//  3. оценить оставшихся;
//  4. отфильтровать по порогу;
//  5. отсортировать: оценка ↓, совпадение навыков ↓, совпадение ролей ↓, ID ↑;
//  6. обрезать до лимита.
//
// Пустая выдача - не ошибка. Повторный вызов на том же снимке даёт
// идентичную последовательность.
func (r *Ranker) Rank(ctx context.Context, seeker *profile.Seeker, candidates []*profile.Candidate, opts RankOptions) (MatchResultList, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	results := make(MatchResultList, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || !c.Eligible() {
			continue
		}
		if c.ID == seeker.ID {
			continue
		}

		blocked, err := r.gate.IsBlocked(ctx, seeker.ID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("matching: block check failed for %s: %w", c.ID, err)
		}
		if blocked {
			continue
		}

		result := Score(seeker, c, opts.Weights)
		if result.Score.Float64() < opts.Threshold {
			continue
		}
		results = append(results, result)
	}

	results.Sort()

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RESULT LIST
// ══════════════════════════════════════════════════════════════════════════════

// MatchResultList - упорядоченная выдача результатов подбора.
type MatchResultList []MatchResult

// Len возвращает длину списка.
func (m MatchResultList) Len() int {
	return len(m)
}

// Sort сортирует выдачу детерминированно: оценка по убыванию,
// затем совпадение навыков, затем совпадение ролей, затем ID кандидата.
func (m MatchResultList) Sort() {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Score != m[j].Score {
			return m[i].Score > m[j].Score
		}
		if m[i].SkillOverlap != m[j].SkillOverlap {
			return m[i].SkillOverlap > m[j].SkillOverlap
		}
		if m[i].RoleOverlap != m[j].RoleOverlap {
			return m[i].RoleOverlap > m[j].RoleOverlap
		}
		return m[i].CandidateID < m[j].CandidateID
	})
}

// TopN возвращает первые N результатов.
func (m MatchResultList) TopN(n int) MatchResultList {
	if n >= len(m) {
		return m
	}
	return m[:n]
}

// CandidateIDs возвращает ID кандидатов в порядке выдачи.
func (m MatchResultList) CandidateIDs() []shared.PartyID {
	ids := make([]shared.PartyID, len(m))
	for i, r := range m {
		ids[i] = r.CandidateID
	}
	return ids
}
