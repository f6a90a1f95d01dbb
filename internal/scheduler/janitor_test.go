package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/store/memory"
)

type countingCompactor struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompactor) Compact(context.Context, time.Time) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestJanitorCollect(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	// toggling twice leaves an empty day behind
	_, err := st.ToggleHabit(ctx, "u1", "h1", "2024-05-10")
	require.NoError(t, err)
	_, err = st.ToggleHabit(ctx, "u1", "h1", "2024-05-10")
	require.NoError(t, err)
	_, err = st.ToggleHabit(ctx, "u1", "h2", "2024-05-11")
	require.NoError(t, err)

	require.NoError(t, st.RevokeToken(ctx, "old-jti", time.Now().Add(-time.Minute)))
	require.NoError(t, st.RevokeToken(ctx, "live-jti", time.Now().Add(time.Hour)))

	j := NewJanitor(st, logger.Nop(), time.Hour)
	removed, err := j.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = j.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	revoked, err := st.IsTokenRevoked(ctx, "live-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	logs, err := st.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestJanitorLoopStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := &countingCompactor{}
	j := NewJanitor(c, logger.Nop(), 5*time.Millisecond)
	require.NoError(t, j.Start(context.Background()))

	require.Eventually(t, func() bool { return c.calls.Load() >= 3 }, time.Second, time.Millisecond)
	j.Stop()
	j.Stop()
}

func TestJanitorTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := &countingCompactor{err: errors.New("store down")}
	j := NewJanitor(c, logger.Nop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, j.Start(ctx)) // initial failure is only logged
	assert.Equal(t, int32(1), c.calls.Load())

	j.Trigger()
	require.Eventually(t, func() bool { return c.calls.Load() == 2 }, time.Second, time.Millisecond)

	cancel()
	j.Stop()
}

func TestJanitorStopWithoutStart(t *testing.T) {
	j := NewJanitor(&countingCompactor{}, logger.Nop(), time.Minute)
	j.Stop()
}
