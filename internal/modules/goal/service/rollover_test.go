package service_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnjourney/internal/modules/goal/service"
	"learnjourney/internal/platform/clock"
)

func newScheduler(clk *clock.Manual, timers *fakeTimers, onTick func()) *service.RolloverScheduler {
	factory := func(d time.Duration, fn func()) service.Timer { return timers.After(d, fn) }
	return service.NewRolloverScheduler(clk, testZone, factory, nil, onTick)
}

func TestNextMidnight(t *testing.T) {
	t.Parallel()
	assert.Equal(t, at(20, 0), service.NextMidnight(at(19, 10), testZone))
	assert.Equal(t, at(21, 0), service.NextMidnight(at(20, 0), testZone), "strictly after")
	assert.Equal(t, at(20, 0), service.NextMidnight(at(19, 23).UTC(), testZone))
}

func TestSchedulerArmsForNextMidnight(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(at(19, 22))
	timers := &fakeTimers{}
	var ticks atomic.Int32
	s := newScheduler(clk, timers, func() { ticks.Add(1) })

	next := s.Schedule()
	assert.Equal(t, at(20, 0), next)
	require.Equal(t, 1, timers.count())
	assert.Equal(t, 2*time.Hour, timers.last().delay)
	assert.True(t, s.Pending())

	clk.Set(at(20, 0))
	timers.last().fn()
	assert.Equal(t, int32(1), ticks.Load())
	require.Equal(t, 2, timers.count())
	assert.Equal(t, 24*time.Hour, timers.last().delay)
	assert.Equal(t, at(21, 0), s.Next())
}

func TestSchedulerEarlyFireDoesNotRepeatDay(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(at(19, 22))
	timers := &fakeTimers{}
	s := newScheduler(clk, timers, func() {})
	s.Schedule()

	clk.Set(at(20, 0).Add(-time.Millisecond))
	timers.last().fn()
	assert.Equal(t, at(21, 0), s.Next())
}

func TestScheduleKeepsOneTimer(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(at(19, 10))
	timers := &fakeTimers{}
	var ticks atomic.Int32
	s := newScheduler(clk, timers, func() { ticks.Add(1) })

	s.Schedule()
	first := timers.last()
	s.Schedule()
	assert.True(t, first.stopped, "re-arming cancels the old timer")

	// A stale callback that slipped past Stop must not tick.
	first.fn()
	assert.Zero(t, ticks.Load())
	assert.Equal(t, 2, timers.count())
}

func TestStopCancelsPendingTimer(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(at(19, 10))
	timers := &fakeTimers{}
	var ticks atomic.Int32
	s := newScheduler(clk, timers, func() { ticks.Add(1) })

	s.Schedule()
	armed := timers.last()
	s.Stop()
	assert.True(t, armed.stopped)
	assert.False(t, s.Pending())
	assert.True(t, s.Next().IsZero())

	armed.fn()
	assert.Zero(t, ticks.Load())
	assert.Equal(t, 1, timers.count())
}

func TestStopDuringTickPreventsRearm(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(at(19, 10))
	timers := &fakeTimers{}
	var s *service.RolloverScheduler
	s = newScheduler(clk, timers, func() { s.Stop() })

	s.Schedule()
	clk.Set(at(20, 0))
	timers.last().fn()
	assert.False(t, s.Pending())
	assert.Equal(t, 1, timers.count())
}

func TestSchedulerWithRealTimers(t *testing.T) {
	t.Parallel()
	// Just before midnight so the real timer fires quickly.
	clk := clock.NewManual(at(20, 0).Add(-20 * time.Millisecond))
	fired := make(chan struct{}, 1)
	s := service.NewRolloverScheduler(clk, testZone, nil, nil, func() {
		clk.Set(at(20, 0))
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	s.Schedule()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("rollover did not fire")
	}
}
