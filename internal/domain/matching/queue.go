package matching

import (
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH QUEUE
// Машина состояний просмотра выдачи "по одному": Idle → Active → Exhausted.
// Живёт в памяти одной сессии одного ищущего; отмена = отбросить объект.
// ══════════════════════════════════════════════════════════════════════════════

// QueueState определяет состояние очереди просмотра.
type QueueState string

const (
	// QueueIdle - сессия не начата или сброшена.
	QueueIdle QueueState = "idle"

	// QueueActive - курсор указывает на валидный результат.
	QueueActive QueueState = "active"

	// QueueExhausted - курсор прошёл все результаты.
	QueueExhausted QueueState = "exhausted"
)

// Queue - курсор по ранжированной выдаче для одной сессии.
// Не потокобезопасна: один ищущий - одна сессия - одна горутина.
type Queue struct {
	seekerID shared.PartyID
	results  MatchResultList
	cursor   int
	state    QueueState
}

// NewQueue создаёт пустую очередь в состоянии Idle.
func NewQueue(seekerID shared.PartyID) *Queue {
	return &Queue{
		seekerID: seekerID,
		state:    QueueIdle,
	}
}

// SeekerID возвращает ID ищущего, которому принадлежит сессия.
func (q *Queue) SeekerID() shared.PartyID {
	return q.seekerID
}

// State возвращает текущее состояние.
func (q *Queue) State() QueueState {
	return q.state
}

// Start начинает сессию с готовой выдачей.
// Пустая выдача оставляет очередь в Idle и возвращает ErrNoMatchesFound -
// сигнал "подходящих нет", а не сбой.
func (q *Queue) Start(results MatchResultList) error {
	if len(results) == 0 {
		q.results = nil
		q.cursor = 0
		q.state = QueueIdle
		return shared.ErrNoMatchesFound
	}

	q.results = results
	q.cursor = 0
	q.state = QueueActive
	return nil
}

// Current возвращает результат под курсором.
// Вне состояния Active возвращает типизированную ошибку, а не молчаливый nil.
func (q *Queue) Current() (MatchResult, error) {
	switch q.state {
	case QueueActive:
		return q.results[q.cursor], nil
	case QueueExhausted:
		return MatchResult{}, shared.ErrQueueExhausted
	default:
		return MatchResult{}, shared.ErrNoActiveSession
	}
}

// Advance сдвигает курсор на следующий результат.
// Проход за последний элемент переводит очередь в Exhausted;
// повторный Advance в Exhausted - идемпотентный no-op.
func (q *Queue) Advance() error {
	switch q.state {
	case QueueActive:
		q.cursor++
		if q.cursor >= len(q.results) {
			q.state = QueueExhausted
		}
		return nil
	case QueueExhausted:
		return nil
	default:
		return shared.ErrNoActiveSession
	}
}

// Remaining возвращает количество непросмотренных результатов,
// включая текущий.
func (q *Queue) Remaining() int {
	if q.state != QueueActive {
		return 0
	}
	return len(q.results) - q.cursor
}

// Total возвращает размер выдачи сессии.
func (q *Queue) Total() int {
	return len(q.results)
}

// Position возвращает индекс курсора (0-based).
func (q *Queue) Position() int {
	return q.cursor
}

// Reset сбрасывает очередь в Idle из любого состояния, отбрасывая выдачу.
func (q *Queue) Reset() {
	q.results = nil
	q.cursor = 0
	q.state = QueueIdle
}
