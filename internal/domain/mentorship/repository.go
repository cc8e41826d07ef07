package mentorship

import (
	"context"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракт персистентности запросов наставничества.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет сторону запроса при выборке списков.
type Role string

const (
	// RoleSeeker - исходящие запросы (я прошу наставничество).
	RoleSeeker Role = "seeker"

	// RoleCandidate - входящие запросы (у меня просят).
	RoleCandidate Role = "candidate"
)

// IsValid проверяет корректность роли.
func (r Role) IsValid() bool {
	return r == RoleSeeker || r == RoleCandidate
}

// ListOptions - параметры выборки запросов.
type ListOptions struct {
	// Status - фильтр по статусу (пустой = все).
	Status Status

	// Limit - максимальное количество (0 = без ограничений).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Repository определяет операции персистентности запросов.
type Repository interface {
	// Create сохраняет новый запрос.
	// Возвращает shared.ErrDuplicateRequest, если для пары уже существует
	// запрос в статусе pending.
	Create(ctx context.Context, request *Request) error

	// GetByID возвращает запрос по ID.
	// Возвращает shared.ErrRequestNotFound, если запрос не найден.
	GetByID(ctx context.Context, id string) (*Request, error)

	// Update сохраняет изменённый статус запроса.
	// Возвращает shared.ErrRequestNotFound, если запрос не найден.
	Update(ctx context.Context, request *Request) error

	// FindPendingByPair возвращает открытый запрос пары (seeker, candidate).
	// Возвращает shared.ErrRequestNotFound, если открытого запроса нет.
	FindPendingByPair(ctx context.Context, seekerID, candidateID shared.PartyID) (*Request, error)

	// ListForParty возвращает запросы стороны в заданной роли.
	ListForParty(ctx context.Context, partyID shared.PartyID, role Role, opts ListOptions) ([]*Request, error)

	// CountPendingForCandidate возвращает количество входящих pending запросов.
	CountPendingForCandidate(ctx context.Context, candidateID shared.PartyID) (int, error)
}
