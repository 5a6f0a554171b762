package dialogue

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "support-bot/internal/common/errors"
	"support-bot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T, opts ...SessionOption) *Sessions {
	t.Helper()
	proto, _ := newTestEngine(t, WithEntities())
	return NewSessions(proto, opts...)
}

func TestSessions_RespondCreates(t *testing.T) {
	s := newTestSessions(t)

	id, turn, err := s.Respond("", "Hello")
	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.Equal(t, "greeting", turn.Intent)

	again, _, err := s.Respond(id, "Bye")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	ctx, err := s.Context(id)
	require.NoError(t, err)
	assert.Equal(t, Context{CurrentIntent: "goodbye", PreviousIntents: []string{"greeting"}}, ctx)
	assert.Equal(t, 1, s.Len())
}

func TestSessions_Isolation(t *testing.T) {
	s := newTestSessions(t)

	_, _, err := s.Respond("a", "order number AB12CD34")
	require.NoError(t, err)
	_, _, err = s.Respond("b", "Hello")
	require.NoError(t, err)

	ents, err := s.Entities("a")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", ents[models.EntityOrderNumber].String())

	ents, err = s.Entities("b")
	require.NoError(t, err)
	assert.Empty(t, ents)
}

func TestSessions_Reset(t *testing.T) {
	s := newTestSessions(t)
	id := s.Open()

	_, _, err := s.Respond(id, "Hello")
	require.NoError(t, err)
	require.NoError(t, s.Reset(id))

	ctx, err := s.Context(id)
	require.NoError(t, err)
	assert.Equal(t, "", ctx.CurrentIntent)

	require.NoError(t, s.ClearEntities(id))
	assert.Error(t, s.ClearEntities("missing"))

	err = s.Reset("missing")
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))
	_, err = s.Context("missing")
	assert.Error(t, err)
	_, err = s.Entities("missing")
	assert.Error(t, err)
}

func TestSessions_ResetAndRespond(t *testing.T) {
	s := newTestSessions(t)

	id, _, err := s.Respond("conv-1", "Hello")
	require.NoError(t, err)
	_, _, err = s.Respond(id, "Bye")
	require.NoError(t, err)

	_, turn, err := s.ResetAndRespond(id, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "greeting", turn.Intent)

	ctx, err := s.Context(id)
	require.NoError(t, err)
	assert.Equal(t, "greeting", ctx.CurrentIntent)
	assert.Empty(t, ctx.PreviousIntents)

	fresh, _, err := s.ResetAndRespond("", "Hello")
	require.NoError(t, err)
	assert.NotEqual(t, id, fresh)

	_, _, err = s.ResetAndRespond(strings.Repeat("x", 129), "Hello")
	assert.Equal(t, apperrors.ErrCodeInvalidTurnInput, apperrors.CodeOf(err))
}

func TestSessions_ResetAndRespondConcurrent(t *testing.T) {
	s := newTestSessions(t)
	id := s.Open()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.ResetAndRespond(id, "Hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ctx, err := s.Context(id)
	require.NoError(t, err)
	assert.Equal(t, "greeting", ctx.CurrentIntent)
	assert.Empty(t, ctx.PreviousIntents)
}

func TestSessions_InvalidID(t *testing.T) {
	s := newTestSessions(t)

	_, _, err := s.Respond(strings.Repeat("x", 129), "Hello")
	assert.Equal(t, apperrors.ErrCodeInvalidTurnInput, apperrors.CodeOf(err))
	assert.Equal(t, 0, s.Len())
}

func TestSessions_MaxEvictsLeastRecent(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestSessions(t, WithMaxSessions(2))
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	_, _, _ = s.Respond("a", "Hello")
	_, _, _ = s.Respond("b", "Hello")
	_, _, _ = s.Respond("a", "Bye")
	_, _, _ = s.Respond("c", "Hello")

	assert.Equal(t, 2, s.Len())
	_, err := s.Context("b")
	assert.Error(t, err)
	_, err = s.Context("a")
	assert.NoError(t, err)
}

func TestSessions_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestSessions(t, WithIdleTTL(time.Minute))
	s.now = func() time.Time { return now }

	_, _, _ = s.Respond("old", "Hello")
	now = now.Add(2 * time.Minute)
	_, _, _ = s.Respond("fresh", "Hello")

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, err := s.Context("fresh")
	assert.NoError(t, err)

	s.Close("fresh")
	assert.Equal(t, 0, s.Len())
}

func TestSessions_SweepDisabled(t *testing.T) {
	s := newTestSessions(t)
	s.Open()
	assert.Equal(t, 0, s.Sweep())
}

func TestSessions_Concurrent(t *testing.T) {
	s := newTestSessions(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i%3)
			for j := 0; j < 25; j++ {
				_, _, err := s.Respond(id, "Order status")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, s.Len())
	for i := 0; i < 3; i++ {
		ctx, err := s.Context(fmt.Sprintf("session-%d", i))
		require.NoError(t, err)
		assert.Len(t, ctx.PreviousIntents, 3)
	}
}
