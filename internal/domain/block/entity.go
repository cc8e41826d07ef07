// Package block содержит доменную модель блокировок между сторонами.
// Блок-связь симметрична: запись в любую сторону подавляет подбор,
// запросы наставничества и чат для обеих сторон.
package block

import (
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY: RELATION
// ══════════════════════════════════════════════════════════════════════════════

// Relation - блок-связь между двумя сторонами.
// Хранится направленно (кто заблокировал), трактуется симметрично.
type Relation struct {
	// BlockerID - кто заблокировал.
	BlockerID shared.PartyID

	// BlockedID - кого заблокировали.
	BlockedID shared.PartyID

	// CreatedAt - когда создана блокировка.
	CreatedAt time.Time
}

// NewRelation создаёт блок-связь с валидацией.
func NewRelation(blockerID, blockedID shared.PartyID) (*Relation, error) {
	if !blockerID.IsValid() || !blockedID.IsValid() {
		return nil, shared.ErrInvalidPartyID
	}

	if blockerID == blockedID {
		return nil, shared.ErrSelfBlock
	}

	return &Relation{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Involves проверяет, участвует ли сторона в связи.
func (r *Relation) Involves(id shared.PartyID) bool {
	return r.BlockerID == id || r.BlockedID == id
}

// Matches проверяет, покрывает ли связь пару (в любом направлении).
func (r *Relation) Matches(a, b shared.PartyID) bool {
	return (r.BlockerID == a && r.BlockedID == b) ||
		(r.BlockerID == b && r.BlockedID == a)
}

// PairKey возвращает канонический ключ неупорядоченной пары.
// Используется кешем и тестами для дедупликации.
func (r *Relation) PairKey() string {
	return PairKey(r.BlockerID, r.BlockedID)
}

// PairKey строит канонический ключ неупорядоченной пары ID.
func PairKey(a, b shared.PartyID) string {
	if a < b {
		return a.String() + ":" + b.String()
	}
	return b.String() + ":" + a.String()
}
