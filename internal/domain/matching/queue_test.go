package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

func sampleResults(n int) MatchResultList {
	results := make(MatchResultList, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, MatchResult{
			CandidateID: shared.PartyID(string(rune('a' + i))),
			Score:       shared.Percent(100 - i),
		})
	}
	return results
}

func TestQueue_StartWithResults(t *testing.T) {
	q := NewQueue("seeker-1")
	assert.Equal(t, QueueIdle, q.State())

	err := q.Start(sampleResults(3))
	assert.NoError(t, err)
	assert.Equal(t, QueueActive, q.State())
	assert.Equal(t, 3, q.Remaining())

	current, err := q.Current()
	assert.NoError(t, err)
	assert.Equal(t, shared.PartyID("a"), current.CandidateID)
}

func TestQueue_StartEmptyStaysIdle(t *testing.T) {
	q := NewQueue("seeker-1")

	err := q.Start(nil)
	assert.ErrorIs(t, err, shared.ErrNoMatchesFound)
	assert.Equal(t, QueueIdle, q.State())

	_, err = q.Current()
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)
}

func TestQueue_CurrentInIdleIsTypedError(t *testing.T) {
	q := NewQueue("seeker-1")

	_, err := q.Current()
	assert.ErrorIs(t, err, shared.ErrNoActiveSession)
}

func TestQueue_AdvanceWalksSequence(t *testing.T) {
	q := NewQueue("seeker-1")
	assert.NoError(t, q.Start(sampleResults(2)))

	current, err := q.Current()
	assert.NoError(t, err)
	assert.Equal(t, shared.PartyID("a"), current.CandidateID)

	assert.NoError(t, q.Advance())
	current, err = q.Current()
	assert.NoError(t, err)
	assert.Equal(t, shared.PartyID("b"), current.CandidateID)
	assert.Equal(t, QueueActive, q.State())
}

func TestQueue_ExhaustionAfterLengthAdvances(t *testing.T) {
	const n = 3
	q := NewQueue("seeker-1")
	assert.NoError(t, q.Start(sampleResults(n)))

	for i := 0; i < n; i++ {
		assert.NoError(t, q.Advance())
	}
	assert.Equal(t, QueueExhausted, q.State())

	_, err := q.Current()
	assert.ErrorIs(t, err, shared.ErrQueueExhausted)

	// One further advance is an idempotent no-op.
	assert.NoError(t, q.Advance())
	assert.Equal(t, QueueExhausted, q.State())
}

func TestQueue_AdvanceInIdleIsError(t *testing.T) {
	q := NewQueue("seeker-1")
	assert.ErrorIs(t, q.Advance(), shared.ErrNoActiveSession)
}

func TestQueue_ResetFromAnyState(t *testing.T) {
	q := NewQueue("seeker-1")

	// Idle → Reset stays Idle.
	q.Reset()
	assert.Equal(t, QueueIdle, q.State())

	// Active → Reset.
	assert.NoError(t, q.Start(sampleResults(2)))
	q.Reset()
	assert.Equal(t, QueueIdle, q.State())
	assert.Equal(t, 0, q.Remaining())

	// Exhausted → Reset.
	assert.NoError(t, q.Start(sampleResults(1)))
	assert.NoError(t, q.Advance())
	assert.Equal(t, QueueExhausted, q.State())
	q.Reset()
	assert.Equal(t, QueueIdle, q.State())
}

func TestQueue_RestartAfterExhaustion(t *testing.T) {
	q := NewQueue("seeker-1")
	assert.NoError(t, q.Start(sampleResults(1)))
	assert.NoError(t, q.Advance())
	assert.Equal(t, QueueExhausted, q.State())

	assert.NoError(t, q.Start(sampleResults(2)))
	assert.Equal(t, QueueActive, q.State())
	assert.Equal(t, 2, q.Remaining())
}
