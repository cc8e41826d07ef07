// Package mentorship содержит доменную модель запроса наставничества
// и машину состояний его жизненного цикла.
package mentorship

import (
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// Жизненный цикл: Pending → Accepted | Declined (терминальные).
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус запроса наставничества.
type Status string

const (
	// StatusPending - ожидает ответа кандидата.
	StatusPending Status = "pending"

	// StatusAccepted - кандидат принял (терминальный).
	StatusAccepted Status = "accepted"

	// StatusDeclined - кандидат отклонил (терминальный).
	StatusDeclined Status = "declined"
)

// IsValid проверяет корректность статуса.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для финального статуса.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// ParseStatus разбирает статус из строки хранилища.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", shared.NewDomainError("mentorship", "ParseStatus", shared.ErrInvalidFormat, "unknown request status: "+s)
	}
	return status, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY: REQUEST
// ══════════════════════════════════════════════════════════════════════════════

// Request - запрос наставничества от ищущего к кандидату.
type Request struct {
	// ID - уникальный идентификатор запроса (UUID).
	ID string

	// SeekerID - кто просит наставничество.
	SeekerID shared.PartyID

	// CandidateID - у кого просят.
	CandidateID shared.PartyID

	// Status - текущий статус.
	Status Status

	// CreatedAt - когда запрос создан.
	CreatedAt time.Time

	// RespondedAt - когда кандидат ответил (nil для pending).
	RespondedAt *time.Time
}

// NewRequestParams параметры создания запроса.
type NewRequestParams struct {
	ID          string
	SeekerID    shared.PartyID
	CandidateID shared.PartyID
}

// NewRequest создаёт запрос в статусе Pending.
func NewRequest(params NewRequestParams) (*Request, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("mentorship", "Create", shared.ErrInvalidID, "request id is required")
	}

	if !params.SeekerID.IsValid() {
		return nil, shared.ErrInvalidPartyID
	}

	if !params.CandidateID.IsValid() {
		return nil, shared.ErrInvalidPartyID
	}

	if params.SeekerID == params.CandidateID {
		return nil, shared.ErrSelfRequest
	}

	return &Request{
		ID:          params.ID,
		SeekerID:    params.SeekerID,
		CandidateID: params.CandidateID,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Transition переводит запрос в новый статус от имени actorID.
//
// Правила:
//   - отвечать может только кандидат (ищущий не принимает собственный запрос);
//   - повторный перевод в тот же терминальный статус - no-op успех;
//   - перевод из терминального статуса в другой - ErrInvalidTransition;
//   - целевой статус Pending недопустим.
func (r *Request) Transition(newStatus Status, actorID shared.PartyID) error {
	if !newStatus.IsValid() || newStatus == StatusPending {
		return shared.NewDomainError("mentorship", "Transition", shared.ErrInvalidInput, "target status must be accepted or declined")
	}

	if actorID != r.CandidateID {
		return shared.ErrUnauthorizedTransition
	}

	if r.Status.IsTerminal() {
		if r.Status == newStatus {
			return nil
		}
		return shared.ErrInvalidTransition
	}

	now := time.Now().UTC()
	r.Status = newStatus
	r.RespondedAt = &now
	return nil
}

// Accept принимает запрос от имени actorID.
func (r *Request) Accept(actorID shared.PartyID) error {
	return r.Transition(StatusAccepted, actorID)
}

// Decline отклоняет запрос от имени actorID.
func (r *Request) Decline(actorID shared.PartyID) error {
	return r.Transition(StatusDeclined, actorID)
}

// IsPending возвращает true, если запрос ожидает ответа.
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// InvolvesParty проверяет, участвует ли сторона в запросе.
func (r *Request) InvolvesParty(id shared.PartyID) bool {
	return r.SeekerID == id || r.CandidateID == id
}

// Clone создаёт глубокую копию запроса.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	clone := *r
	if r.RespondedAt != nil {
		respondedAt := *r.RespondedAt
		clone.RespondedAt = &respondedAt
	}
	return &clone
}
