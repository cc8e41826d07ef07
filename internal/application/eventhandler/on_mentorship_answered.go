// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MENTORSHIP ANSWERED HANDLER
// Обрабатывает события жизненного цикла запроса наставничества.
//
// Счётчик входящих запросов кандидата кешируется; любое изменение
// статуса запроса делает его устаревшим.
// ═══════════════════════════════════════════════════════════════════════════

// PendingCountCache поддерживает закешированный счётчик входящих запросов.
// Реализация живёт в infrastructure/persistence/redis.
type PendingCountCache interface {
	AdjustPendingCount(ctx context.Context, candidateID shared.PartyID, delta int) error
	InvalidatePendingCount(ctx context.Context, candidateID shared.PartyID) error
}

// OnMentorshipAnsweredHandler двигает счётчик входящих запросов кандидата:
// создание запроса увеличивает его, принятие или отклонение уменьшает.
// При сбое корректировки счётчик сбрасывается целиком.
type OnMentorshipAnsweredHandler struct {
	pendingCounts PendingCountCache
	logger        *slog.Logger
	timeout       time.Duration
}

// NewOnMentorshipAnsweredHandler создаёт новый обработчик.
func NewOnMentorshipAnsweredHandler(pendingCounts PendingCountCache, logger *slog.Logger) *OnMentorshipAnsweredHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnMentorshipAnsweredHandler{
		pendingCounts: pendingCounts,
		logger:        logger,
		timeout:       5 * time.Second,
	}
}

// Handle обрабатывает события mentorship.requested, mentorship.accepted
// и mentorship.declined. Сигнатура соответствует shared.EventHandler.
func (h *OnMentorshipAnsweredHandler) Handle(event shared.Event) error {
	candidateID := mentorshipCandidate(event)
	if candidateID == "" {
		h.logger.Warn("mentorship event without candidate id", "event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	delta := 1
	if event.EventType() != shared.EventMentorshipRequested {
		delta = -1
	}

	if err := h.pendingCounts.AdjustPendingCount(ctx, shared.PartyID(candidateID), delta); err != nil {
		h.logger.Warn("failed to adjust pending count, dropping counter",
			"candidate_id", candidateID,
			"event_type", event.EventType(),
			"error", err,
		)
		// Лучше промах кеша, чем неверный счётчик.
		_ = h.pendingCounts.InvalidatePendingCount(ctx, shared.PartyID(candidateID))
		return err
	}

	return nil
}

// mentorshipCandidate извлекает ID кандидата из события.
func mentorshipCandidate(event shared.Event) string {
	switch e := event.(type) {
	case shared.MentorshipRequestedEvent:
		return e.CandidateID
	case shared.MentorshipRespondedEvent:
		return e.CandidateID
	}

	candidateID, _ := event.Payload()["candidate_id"].(string)
	return candidateID
}
