package block

import (
	"context"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракт персистентности блок-связей.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции персистентности блокировок.
type Repository interface {
	// Insert сохраняет блок-связь.
	// Повторная вставка существующей связи - no-op успех.
	Insert(ctx context.Context, relation *Relation) error

	// Delete удаляет направленную блок-связь (blocker → blocked).
	// Удаление несуществующей связи - no-op успех.
	Delete(ctx context.Context, blockerID, blockedID shared.PartyID) error

	// ExistsBetween проверяет наличие связи между парой в любом направлении.
	ExistsBetween(ctx context.Context, a, b shared.PartyID) (bool, error)

	// ListInvolving возвращает все связи с участием стороны.
	ListInvolving(ctx context.Context, partyID shared.PartyID) ([]*Relation, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// GATE
// ══════════════════════════════════════════════════════════════════════════════

// Gate - симметричный фильтр взаимодействия поверх Repository.
// Его консультируют Ranker (исключение из выдачи), команды workflow
// (вето на запрос/ответ) и чат-коллаборатор (CanInteract).
type Gate struct {
	repo Repository
}

// NewGate создаёт Gate поверх репозитория.
func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

// IsBlocked проверяет, подавлено ли взаимодействие пары (симметрично).
func (g *Gate) IsBlocked(ctx context.Context, a, b shared.PartyID) (bool, error) {
	return g.repo.ExistsBetween(ctx, a, b)
}

// CanInteract возвращает true, если пара может взаимодействовать
// (подбор, запросы, сообщения).
func (g *Gate) CanInteract(ctx context.Context, a, b shared.PartyID) (bool, error) {
	blocked, err := g.IsBlocked(ctx, a, b)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// Block создаёт блокировку. Идемпотентна: повторная блокировка - успех.
func (g *Gate) Block(ctx context.Context, blockerID, blockedID shared.PartyID) (*Relation, error) {
	relation, err := NewRelation(blockerID, blockedID)
	if err != nil {
		return nil, err
	}

	if err := g.repo.Insert(ctx, relation); err != nil {
		return nil, err
	}
	return relation, nil
}

// Unblock снимает блокировку. Идемпотентна: снятие несуществующей - успех.
func (g *Gate) Unblock(ctx context.Context, blockerID, blockedID shared.PartyID) error {
	if !blockerID.IsValid() || !blockedID.IsValid() {
		return shared.ErrInvalidPartyID
	}
	return g.repo.Delete(ctx, blockerID, blockedID)
}
