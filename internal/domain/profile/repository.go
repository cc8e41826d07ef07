package profile

import (
	"context"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт чтения профилей из внешнего хранилища.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// CandidateFilter задаёт фильтр выборки кандидатов.
// Verified и Active всегда подразумеваются true на уровне запроса:
// неподходящие снимки не являются входом ранжирования.
type CandidateFilter struct {
	// Location - фильтр по локации (пустая = все локации).
	Location string

	// NameQuery - поиск по имени (подстрока, регистронезависимый).
	NameQuery string

	// Limit - максимальное количество результатов (0 = без ограничений).
	Limit int
}

// Store определяет операции чтения профилей (Profile Store).
type Store interface {
	// GetSeeker возвращает профиль ищущего по ID.
	// Возвращает shared.ErrSeekerNotFound, если профиль не найден.
	GetSeeker(ctx context.Context, id shared.PartyID) (*Seeker, error)

	// GetCandidate возвращает профиль кандидата по ID.
	// Возвращает shared.ErrCandidateNotFound, если профиль не найден.
	GetCandidate(ctx context.Context, id shared.PartyID) (*Candidate, error)

	// ListEligibleCandidates возвращает верифицированных активных кандидатов
	// по заданному фильтру.
	ListEligibleCandidates(ctx context.Context, filter CandidateFilter) ([]*Candidate, error)
}
