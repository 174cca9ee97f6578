package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"learnjourney/internal/modules/goal/domain"
	goalout "learnjourney/internal/modules/goal/port/out"
	"learnjourney/internal/platform/clock"
	apperrors "learnjourney/internal/platform/errors"
	"learnjourney/internal/platform/id"
)

type Options struct {
	Location   *time.Location
	WeekStart  time.Weekday
	Completion domain.CompletionPolicy
	Logger     hclog.Logger
}

// Engine derives streak, freeze budget and completion from the day log and
// writes every mutation through the store before returning.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	clock     clock.Clock
	ids       id.Generator
	store     goalout.DurableStore
	loc       *time.Location
	weekStart time.Weekday
	policy    domain.CompletionPolicy
	log       hclog.Logger

	// stored mirrors the entries last read from or written to the store.
	stored       map[string][]byte
	state        domain.GoalState
	today        domain.Day
	todayLearned bool
	todayFreezed bool
	viewedWeek   domain.Day
}

// NewEngine loads the persisted goal, applies streak decay and primes today's flags.
func NewEngine(ctx context.Context, clk clock.Clock, ids id.Generator, store goalout.DurableStore, opts Options) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("goal store is required")
	}
	e := &Engine{
		clock:     clk,
		ids:       ids,
		store:     store,
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		policy:    opts.Completion,
		log:       opts.Logger,
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.policy == "" {
		e.policy = domain.CompletionExact
	}
	if e.log == nil {
		e.log = hclog.NewNullLogger()
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	e.viewedWeek = e.today.StartOfWeek(e.weekStart)
	return e, nil
}

// Reload re-reads the goal from the store, applies streak decay and primes
// today's flags. Long-lived callers run it before every operation so that
// writes made by other processes are seen rather than overwritten.
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.load(ctx); err != nil {
		return err
	}
	if _, err := e.CheckStreakValidity(ctx); err != nil {
		return err
	}
	e.RefreshToday()
	return nil
}

func (e *Engine) load(ctx context.Context) error {
	entries, err := e.store.Load(ctx, stateKeys...)
	if err != nil {
		return fmt.Errorf("load goal state: %w", err)
	}
	today := e.currentDay()
	state, found := DecodeState(entries, e.loc, today, e.log)
	e.stored = entries
	e.state = state
	if state.GoalID != "" {
		return nil
	}
	// First use, or data written before goal ids existed.
	state.GoalID = e.ids.New()
	if err := e.save(ctx, state); err != nil {
		return err
	}
	e.log.Debug("goal state initialised", "goal_id", state.GoalID, "existing", found)
	return nil
}

// save writes only the entries that differ from what the store holds, so a
// field this engine did not touch is never rewritten from a stale copy.
func (e *Engine) save(ctx context.Context, next domain.GoalState) error {
	entries, err := EncodeState(next, e.loc)
	if err != nil {
		return fmt.Errorf("encode goal state: %w", err)
	}
	changed := make(map[string][]byte, len(entries))
	for k, v := range entries {
		if old, ok := e.stored[k]; !ok || !bytes.Equal(old, v) {
			changed[k] = v
		}
	}
	if len(changed) > 0 {
		if err := e.store.Save(ctx, changed); err != nil {
			return fmt.Errorf("save goal state: %w", err)
		}
	}
	if e.stored == nil {
		e.stored = make(map[string][]byte, len(entries))
	}
	for k, v := range changed {
		e.stored[k] = v
	}
	e.state = next
	return nil
}

func (e *Engine) currentDay() domain.Day {
	return domain.DayOf(e.clock.Now().In(e.loc))
}

// State returns a deep copy of the current goal.
func (e *Engine) State() domain.GoalState {
	return e.state.Clone()
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) WeekStart() time.Weekday {
	return e.weekStart
}

// Today is the calendar day the cached flags were computed for.
func (e *Engine) Today() domain.Day {
	return e.today
}

func (e *Engine) RecordLearned(ctx context.Context) (domain.Outcome, error) {
	return e.RecordLearnedOn(ctx, e.currentDay())
}

// RecordLearnedOn logs d as learned. Duplicates and freezed days are no-ops.
func (e *Engine) RecordLearnedOn(ctx context.Context, d domain.Day) (domain.Outcome, error) {
	switch {
	case e.state.LearnedDays.Has(d):
		return domain.OutcomeAlreadyLearned, nil
	case e.state.FreezedDays.Has(d):
		return domain.OutcomeAlreadyFreezed, nil
	}
	next := e.state.Clone()
	next.LearnedDays.Add(d)
	next.LastActiveDate = d
	next.LastActiveAt = e.activeAt(d)
	next.CurrentStreak++
	e.markCompletion(&next)
	if err := e.save(ctx, next); err != nil {
		return "", err
	}
	e.RefreshToday()
	e.log.Debug("day learned", "day", d.String(), "streak", next.CurrentStreak)
	return domain.OutcomeRecorded, nil
}

func (e *Engine) RecordFreezed(ctx context.Context) (domain.Outcome, error) {
	return e.RecordFreezedOn(ctx, e.currentDay())
}

// RecordFreezedOn spends one freeze on d. The streak is left as is.
func (e *Engine) RecordFreezedOn(ctx context.Context, d domain.Day) (domain.Outcome, error) {
	switch {
	case e.state.FreezedDays.Has(d):
		return domain.OutcomeAlreadyFreezed, nil
	case e.state.LearnedDays.Has(d):
		return domain.OutcomeAlreadyLearned, nil
	case e.state.HasReachedFreezeLimit():
		e.log.Info("freeze limit reached", "used", e.state.UsedFreezes(), "quota", e.state.FreezeQuota())
		return domain.OutcomeFreezeLimitReached, nil
	}
	next := e.state.Clone()
	next.FreezedDays.Add(d)
	next.LastActiveDate = d
	next.LastActiveAt = e.activeAt(d)
	e.markCompletion(&next)
	if err := e.save(ctx, next); err != nil {
		return "", err
	}
	e.RefreshToday()
	e.log.Debug("day freezed", "day", d.String(), "used", next.UsedFreezes())
	return domain.OutcomeRecorded, nil
}

// activeAt is the log instant for d: the current time when d is today,
// otherwise the local midnight of d.
func (e *Engine) activeAt(d domain.Day) time.Time {
	now := e.clock.Now().In(e.loc)
	if domain.DayOf(now) == d {
		return now
	}
	return d.Midnight(e.loc)
}

func (e *Engine) IsTodayLearned() bool {
	return e.todayLearned
}

func (e *Engine) IsTodayFreezed() bool {
	return e.todayFreezed
}

// RefreshToday recomputes the cached flags for the clock's current day.
func (e *Engine) RefreshToday() {
	e.today = e.currentDay()
	e.todayLearned = e.state.LearnedDays.Has(e.today)
	e.todayFreezed = e.state.FreezedDays.Has(e.today)
}

// CheckStreakValidity zeroes the streak once more than StreakDecayWindow has
// passed since the last learned or freezed log.
func (e *Engine) CheckStreakValidity(ctx context.Context) (bool, error) {
	if e.state.CurrentStreak == 0 {
		return false, nil
	}
	since := e.clock.Now().Sub(e.state.LastActiveInstant(e.loc))
	if since <= domain.StreakDecayWindow {
		return false, nil
	}
	next := e.state.Clone()
	lost := next.CurrentStreak
	next.CurrentStreak = 0
	if err := e.save(ctx, next); err != nil {
		return false, err
	}
	e.log.Info("streak decayed", "last_active", next.LastActiveDate.String(), "lost", lost)
	return true, nil
}

// Rollover is the day-boundary refresh: today's flags, then streak decay.
func (e *Engine) Rollover(ctx context.Context) error {
	e.RefreshToday()
	if _, err := e.CheckStreakValidity(ctx); err != nil {
		return err
	}
	e.log.Debug("day rollover", "today", e.today.String())
	return nil
}

func (e *Engine) PeriodEndDate() domain.Day {
	return e.state.PeriodEndDate()
}

// EvaluatePeriodCompletion sets PeriodFinished when today reaches the period
// end under the configured policy. The flag only clears on reset or restart.
func (e *Engine) EvaluatePeriodCompletion(ctx context.Context) (bool, error) {
	next := e.state.Clone()
	if !e.markCompletion(&next) {
		return e.state.PeriodFinished, nil
	}
	if err := e.save(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) markCompletion(g *domain.GoalState) bool {
	if g.PeriodFinished {
		return false
	}
	today := e.currentDay()
	end := g.PeriodEndDate()
	if !e.policy.Reached(today, end) {
		return false
	}
	g.PeriodFinished = true
	e.log.Info("goal period finished", "title", g.Title, "end", end.String(), "streak", g.CurrentStreak)
	return true
}

// ResetForNewGoal replaces the goal wholesale in a single batch.
func (e *Engine) ResetForNewGoal(ctx context.Context, title string, kind domain.DurationKind) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if err := kind.Validate(); err != nil {
		return err
	}
	return e.replace(ctx, title, kind)
}

// RestartSameGoal starts a fresh period with the current title and duration.
func (e *Engine) RestartSameGoal(ctx context.Context) error {
	if !e.state.HasGoal() {
		return apperrors.ErrNoGoal
	}
	return e.replace(ctx, e.state.Title, e.state.Duration)
}

func (e *Engine) replace(ctx context.Context, title string, kind domain.DurationKind) error {
	today := e.currentDay()
	next := domain.NewGoalState(e.ids.New(), today)
	next.Title = title
	next.Duration = kind
	if err := e.save(ctx, next); err != nil {
		return err
	}
	e.RefreshToday()
	e.viewedWeek = e.today.StartOfWeek(e.weekStart)
	e.log.Info("goal started", "goal_id", next.GoalID, "title", title, "duration", string(kind), "start", today.String())
	return nil
}

func (e *Engine) UsedFreezes() int {
	return e.state.UsedFreezes()
}

func (e *Engine) UsedLearned() int {
	return e.state.UsedLearned()
}

func (e *Engine) HasReachedFreezeLimit() bool {
	return e.state.HasReachedFreezeLimit()
}

func (e *Engine) FreezeQuota() int {
	return e.state.FreezeQuota()
}

// ChangeViewedWeek moves the calendar row by offset weeks and returns its first day.
func (e *Engine) ChangeViewedWeek(offset int) domain.Day {
	e.viewedWeek = e.viewedWeek.AddDays(7 * offset)
	return e.viewedWeek
}

func (e *Engine) ViewedWeek() []domain.WeekDay {
	return domain.Week(e.state, e.viewedWeek, e.today)
}
