package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET REQUESTS QUERY
// Списки заявок на менторство с точки зрения одной из сторон.
// ══════════════════════════════════════════════════════════════════════════════

// GetRequestsQuery содержит параметры запроса списка заявок.
type GetRequestsQuery struct {
	// PartyID - чьи заявки запрашиваются.
	PartyID string

	// Role - роль стороны в заявках (seeker или candidate).
	Role string

	// Status - фильтр по статусу (пустой = все).
	Status string

	// Limit - максимум заявок в выдаче (0 = значение по умолчанию).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров.
func (q *GetRequestsQuery) Validate() error {
	if q.PartyID == "" {
		return errors.New("get_requests: party_id is required")
	}
	if q.Role != string(mentorship.RoleSeeker) && q.Role != string(mentorship.RoleCandidate) {
		return fmt.Errorf("get_requests: unknown role %q", q.Role)
	}
	if q.Status != "" {
		if _, err := mentorship.ParseStatus(q.Status); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return errors.New("get_requests: limit cannot be negative")
	}
	if q.Offset < 0 {
		return errors.New("get_requests: offset cannot be negative")
	}
	return nil
}

// RequestDTO - заявка для внешнего потребителя.
type RequestDTO struct {
	// ID - идентификатор заявки.
	ID string `json:"id"`

	// SeekerID - кто отправил заявку.
	SeekerID string `json:"seeker_id"`

	// CandidateID - кому адресована заявка.
	CandidateID string `json:"candidate_id"`

	// Status - текущий статус.
	Status string `json:"status"`

	// CreatedAt - когда заявка создана.
	CreatedAt time.Time `json:"created_at"`

	// RespondedAt - когда заявка получила ответ (nil для pending).
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// GetRequestsResult содержит выдачу запроса.
type GetRequestsResult struct {
	// Requests - список заявок, новые первыми.
	Requests []RequestDTO `json:"requests"`

	// PendingCount - количество pending-заявок стороны в роли candidate.
	PendingCount int `json:"pending_count"`
}

// PendingCounts кеширует счётчик входящих pending-заявок кандидата.
// Сброс при изменении статусов выполняет обработчик событий.
type PendingCounts interface {
	GetPendingCount(ctx context.Context, candidateID shared.PartyID) (int, bool, error)
	SetPendingCount(ctx context.Context, candidateID shared.PartyID, count int) error
}

// GetRequestsHandler handles the GetRequestsQuery.
type GetRequestsHandler struct {
	requests mentorship.Repository
	counts   PendingCounts
}

// NewGetRequestsHandler creates a new GetRequestsHandler.
// The counts cache is optional; pass nil to always hit the repository.
func NewGetRequestsHandler(requests mentorship.Repository, counts PendingCounts) *GetRequestsHandler {
	return &GetRequestsHandler{requests: requests, counts: counts}
}

// Handle executes the get requests query.
func (h *GetRequestsHandler) Handle(ctx context.Context, q GetRequestsQuery) (*GetRequestsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	opts := mentorship.ListOptions{
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if q.Status != "" {
		status, _ := mentorship.ParseStatus(q.Status)
		opts.Status = status
	}

	partyID := shared.PartyID(q.PartyID)
	role := mentorship.Role(q.Role)

	list, err := h.requests.ListForParty(ctx, partyID, role, opts)
	if err != nil {
		return nil, fmt.Errorf("get_requests: %w", err)
	}

	result := &GetRequestsResult{
		Requests: make([]RequestDTO, 0, len(list)),
	}
	for _, r := range list {
		result.Requests = append(result.Requests, toRequestDTO(r))
	}

	if role == mentorship.RoleCandidate {
		count, err := h.pendingCount(ctx, partyID)
		if err != nil {
			return nil, fmt.Errorf("get_requests: pending count: %w", err)
		}
		result.PendingCount = count
	}

	return result, nil
}

// pendingCount читает счётчик через кеш, при промахе - из репозитория.
// Ошибки кеша не фатальны: выдача продолжается со свежим значением.
func (h *GetRequestsHandler) pendingCount(ctx context.Context, candidateID shared.PartyID) (int, error) {
	if h.counts != nil {
		if count, ok, err := h.counts.GetPendingCount(ctx, candidateID); err == nil && ok {
			return count, nil
		}
	}

	count, err := h.requests.CountPendingForCandidate(ctx, candidateID)
	if err != nil {
		return 0, err
	}

	if h.counts != nil {
		_ = h.counts.SetPendingCount(ctx, candidateID, count)
	}

	return count, nil
}

func toRequestDTO(r *mentorship.Request) RequestDTO {
	dto := RequestDTO{
		ID:          r.ID,
		SeekerID:    r.SeekerID.String(),
		CandidateID: r.CandidateID.String(),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if r.RespondedAt != nil {
		t := *r.RespondedAt
		dto.RespondedAt = &t
	}
	return dto
}
