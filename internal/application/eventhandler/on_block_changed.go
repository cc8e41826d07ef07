// Package eventhandler содержит обработчики доменных событий.
// Эти обработчики реализуют event-driven архитектуру и связывают
// различные части системы через асинхронные события.
//
// Философия: обработчики событий — это "реактивная" часть системы.
// Они реагируют на изменения и запускают побочные эффекты,
// такие как инвалидация кешей выдачи.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/application/query"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BLOCK CHANGED HANDLER
// Обрабатывает события блокировки и разблокировки.
//
// Блокировка симметрична: она меняет множество допустимых кандидатов
// для обеих сторон. Закешированная выдача каждой из сторон становится
// недействительной сразу же.
// ═══════════════════════════════════════════════════════════════════════════

// OnBlockChangedHandler инвалидирует кеши выдачи при изменении блокировок.
type OnBlockChangedHandler struct {
	matchCache query.MatchCache
	logger     *slog.Logger
	timeout    time.Duration
}

// NewOnBlockChangedHandler создаёт новый обработчик.
func NewOnBlockChangedHandler(matchCache query.MatchCache, logger *slog.Logger) *OnBlockChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnBlockChangedHandler{
		matchCache: matchCache,
		logger:     logger,
		timeout:    5 * time.Second,
	}
}

// Handle обрабатывает события block.created и block.removed.
// Сигнатура соответствует shared.EventHandler.
func (h *OnBlockChangedHandler) Handle(event shared.Event) error {
	blockerID, blockedID := blockParties(event)
	if blockerID == "" || blockedID == "" {
		h.logger.Warn("block event without party ids", "event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	// Инвалидируем обе стороны: пара исключается (или возвращается)
	// в выдачу каждой из них.
	for _, id := range []string{blockerID, blockedID} {
		if err := h.matchCache.Invalidate(ctx, shared.PartyID(id)); err != nil {
			h.logger.Warn("failed to invalidate match cache",
				"party_id", id,
				"event_type", event.EventType(),
				"error", err,
			)
		}
	}

	h.logger.Debug("match caches invalidated after block change",
		"blocker_id", blockerID,
		"blocked_id", blockedID,
		"event_type", event.EventType(),
	)

	return nil
}

// blockParties извлекает стороны из события. Локальные события несут
// типизированные поля; события, пришедшие через Redis, — только payload.
func blockParties(event shared.Event) (blockerID, blockedID string) {
	switch e := event.(type) {
	case shared.PartyBlockedEvent:
		return e.BlockerID, e.BlockedID
	case shared.PartyUnblockedEvent:
		return e.BlockerID, e.BlockedID
	}

	payload := event.Payload()
	blockerID, _ = payload["blocker_id"].(string)
	blockedID, _ = payload["blocked_id"].(string)
	return blockerID, blockedID
}
