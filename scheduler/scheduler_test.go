package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	loc := time.UTC

	t.Run("later today", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 0, 30, 0, 0, loc)
		require.Equal(t, time.Date(2026, 8, 30, 1, 0, 0, 0, loc), nextRun(now, 1))
	})

	t.Run("hour already passed rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 2, 0, 0, 0, loc)
		require.Equal(t, time.Date(2026, 8, 31, 1, 0, 0, 0, loc), nextRun(now, 1))
	})

	t.Run("exactly on the hour rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2026, 8, 30, 1, 0, 0, 0, loc)
		require.Equal(t, time.Date(2026, 8, 31, 1, 0, 0, 0, loc), nextRun(now, 1))
	})

	t.Run("month boundary", func(t *testing.T) {
		now := time.Date(2026, 8, 31, 23, 30, 0, 0, loc)
		require.Equal(t, time.Date(2026, 9, 1, 23, 0, 0, 0, loc), nextRun(now, 23))
	})
}

func TestNew_ClampsHour(t *testing.T) {
	require.Equal(t, 23, New(30, nil).hour)
	require.Equal(t, 0, New(-5, nil).hour)
}

func TestScheduler_RunsAndStops(t *testing.T) {
	var runs atomic.Int32
	// Freeze "now" one second before the scheduled hour so the first tick
	// fires almost immediately.
	base := time.Date(2026, 8, 30, 0, 59, 59, 0, time.UTC)
	start := time.Now()
	s := New(1, func(ctx context.Context) { runs.Add(1) },
		WithNowTime(func() time.Time { return base.Add(time.Since(start)) }))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_StopBeforeTick(t *testing.T) {
	// Freeze the clock well before the scheduled hour so the tick is far out.
	now := time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC)
	s := New(1, func(ctx context.Context) { t.Error("job must not run") },
		WithNowTime(func() time.Time { return now }))
	s.Start(context.Background())
	s.Stop()
}
