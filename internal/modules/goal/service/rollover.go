package service

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"learnjourney/internal/modules/goal/domain"
	"learnjourney/internal/platform/clock"
)

type Timer interface {
	Stop() bool
}

// TimerFactory arms a one-shot timer that runs fn after d.
type TimerFactory func(d time.Duration, fn func()) Timer

func AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// NextMidnight is the first local midnight strictly after now.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	return domain.DayOf(now.In(loc)).AddDays(1).Midnight(loc)
}

// RolloverScheduler fires onTick at every local midnight. At most one timer
// is pending; Schedule re-arms and Stop cancels.
type RolloverScheduler struct {
	clock  clock.Clock
	loc    *time.Location
	after  TimerFactory
	onTick func()
	log    hclog.Logger

	mu     sync.Mutex
	timer  Timer
	target time.Time
	gen    uint64
}

func NewRolloverScheduler(clk clock.Clock, loc *time.Location, after TimerFactory, log hclog.Logger, onTick func()) *RolloverScheduler {
	if loc == nil {
		loc = time.Local
	}
	if after == nil {
		after = AfterFunc
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &RolloverScheduler{clock: clk, loc: loc, after: after, onTick: onTick, log: log}
}

// Schedule cancels any pending timer and arms one for the next local midnight.
func (s *RolloverScheduler) Schedule() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armLocked(s.clock.Now())
}

func (s *RolloverScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cancelLocked()
}

func (s *RolloverScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Next is the midnight the pending timer targets, zero when idle.
func (s *RolloverScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}
	}
	return s.target
}

func (s *RolloverScheduler) armLocked(from time.Time) time.Time {
	s.cancelLocked()
	s.gen++
	gen := s.gen
	s.target = NextMidnight(from, s.loc)
	delay := s.target.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.timer = s.after(delay, func() { s.fire(gen) })
	s.log.Debug("rollover scheduled", "at", s.target.Format(time.RFC3339), "in", delay.String())
	return s.target
}

func (s *RolloverScheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *RolloverScheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	target := s.target
	s.timer = nil
	s.mu.Unlock()

	if s.onTick != nil {
		s.onTick()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	// Timers can fire a hair early against the wall clock.
	from := s.clock.Now()
	if from.Before(target) {
		from = target
	}
	s.armLocked(from)
}
