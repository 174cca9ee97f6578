package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"learnjourney/internal/modules/goal/domain"
	"learnjourney/internal/modules/goal/dto"
	goalin "learnjourney/internal/modules/goal/port/in"
	goalout "learnjourney/internal/modules/goal/port/out"
	"learnjourney/internal/modules/goal/service"
	"learnjourney/internal/platform/clock"
	apperrors "learnjourney/internal/platform/errors"
)

// Interactor is the single owner of the engine. Every operation, including
// the midnight tick, runs under one lock; observers run after it is released.
type Interactor struct {
	mu      sync.Mutex
	engine  *service.Engine
	archive goalout.HistoryArchive
	clock   clock.Clock
	log     hclog.Logger

	subMu   sync.Mutex
	subs    map[int]func(dto.GoalOutput)
	nextSub int
}

func NewInteractor(engine *service.Engine, archive goalout.HistoryArchive, clk clock.Clock, log hclog.Logger) goalin.Usecase {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Interactor{
		engine:  engine,
		archive: archive,
		clock:   clk,
		log:     log,
		subs:    map[int]func(dto.GoalOutput){},
	}
}

func (i *Interactor) Snapshot(ctx context.Context) (dto.GoalOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.engine.Reload(ctx); err != nil {
		return dto.GoalOutput{}, err
	}
	return i.snapshotLocked(), nil
}

func (i *Interactor) RecordLearned(ctx context.Context) (dto.RecordOutput, error) {
	return i.record(ctx, i.engine.RecordLearned)
}

func (i *Interactor) RecordFreezed(ctx context.Context) (dto.RecordOutput, error) {
	return i.record(ctx, i.engine.RecordFreezed)
}

func (i *Interactor) record(ctx context.Context, op func(context.Context) (domain.Outcome, error)) (dto.RecordOutput, error) {
	i.mu.Lock()
	if err := i.engine.Reload(ctx); err != nil {
		i.mu.Unlock()
		return dto.RecordOutput{}, err
	}
	if !i.engine.State().HasGoal() {
		i.mu.Unlock()
		return dto.RecordOutput{}, apperrors.ErrNoGoal
	}
	outcome, err := op(ctx)
	if err != nil {
		i.mu.Unlock()
		return dto.RecordOutput{}, err
	}
	snap := i.snapshotLocked()
	i.mu.Unlock()

	if outcome.Recorded() {
		i.notify(snap)
	}
	return dto.RecordOutput{Outcome: string(outcome), Goal: snap}, nil
}

func (i *Interactor) ResetForNewGoal(ctx context.Context, input dto.ResetInput) (dto.GoalOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return dto.GoalOutput{}, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	kind, err := domain.ParseDurationKind(input.Duration)
	if err != nil {
		return dto.GoalOutput{}, err
	}

	i.mu.Lock()
	if err := i.engine.Reload(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	if err := i.archiveLocked(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	if err := i.engine.ResetForNewGoal(ctx, title, kind); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	snap := i.snapshotLocked()
	i.mu.Unlock()

	i.notify(snap)
	return snap, nil
}

func (i *Interactor) RestartSameGoal(ctx context.Context) (dto.GoalOutput, error) {
	i.mu.Lock()
	if err := i.engine.Reload(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	if !i.engine.State().HasGoal() {
		i.mu.Unlock()
		return dto.GoalOutput{}, apperrors.ErrNoGoal
	}
	if err := i.archiveLocked(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	if err := i.engine.RestartSameGoal(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	snap := i.snapshotLocked()
	i.mu.Unlock()

	i.notify(snap)
	return snap, nil
}

// archiveLocked keeps a summary of the outgoing goal. Nothing is archived
// before a goal was ever set.
func (i *Interactor) archiveLocked(ctx context.Context) error {
	current := i.engine.State()
	if i.archive == nil || !current.HasGoal() {
		return nil
	}
	if err := i.archive.Append(ctx, domain.Archive(current, i.clock.Now())); err != nil {
		return fmt.Errorf("archive goal %s: %w", current.GoalID, err)
	}
	return nil
}

func (i *Interactor) ChangeViewedWeek(ctx context.Context, offset int) (dto.WeekOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.engine.Reload(ctx); err != nil {
		return dto.WeekOutput{}, err
	}
	start := i.engine.ChangeViewedWeek(offset)
	return i.weekLocked(start), nil
}

func (i *Interactor) Tick(ctx context.Context) (dto.GoalOutput, error) {
	i.mu.Lock()
	// Rollover saves, so pick up anything other processes logged first.
	if err := i.engine.Reload(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	if err := i.engine.Rollover(ctx); err != nil {
		i.mu.Unlock()
		return dto.GoalOutput{}, err
	}
	snap := i.snapshotLocked()
	i.mu.Unlock()

	i.notify(snap)
	return snap, nil
}

func (i *Interactor) History(ctx context.Context) ([]dto.HistoryItem, error) {
	if i.archive == nil {
		return []dto.HistoryItem{}, nil
	}
	rows, err := i.archive.List(ctx)
	if err != nil {
		return nil, err
	}
	loc := i.engine.Location()
	out := make([]dto.HistoryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.HistoryItem{
			GoalID:         row.GoalID,
			Title:          row.Title,
			Duration:       string(row.Duration),
			StartDate:      row.StartDate.Midnight(loc),
			EndDate:        row.EndDate.Midnight(loc),
			LearnedDays:    row.LearnedDays,
			FreezedDays:    row.FreezedDays,
			Streak:         row.Streak,
			PeriodFinished: row.PeriodFinished,
			ArchivedAt:     row.ArchivedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Subscribe(fn func(dto.GoalOutput)) func() {
	i.subMu.Lock()
	defer i.subMu.Unlock()
	key := i.nextSub
	i.nextSub++
	i.subs[key] = fn
	return func() {
		i.subMu.Lock()
		defer i.subMu.Unlock()
		delete(i.subs, key)
	}
}

func (i *Interactor) notify(snap dto.GoalOutput) {
	i.subMu.Lock()
	fns := make([]func(dto.GoalOutput), 0, len(i.subs))
	for _, fn := range i.subs {
		fns = append(fns, fn)
	}
	i.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (i *Interactor) snapshotLocked() dto.GoalOutput {
	st := i.engine.State()
	loc := i.engine.Location()
	return dto.GoalOutput{
		GoalID:         st.GoalID,
		HasGoal:        st.HasGoal(),
		Title:          st.Title,
		Duration:       string(st.Duration),
		StartDate:      st.StartDate.Midnight(loc),
		EndDate:        st.PeriodEndDate().Midnight(loc),
		LastActiveDate: st.LastActiveDate.Midnight(loc),
		CurrentStreak:  st.CurrentStreak,
		LearnedDays:    toTimes(st.LearnedDays, loc),
		FreezedDays:    toTimes(st.FreezedDays, loc),
		UsedLearned:    st.UsedLearned(),
		UsedFreezes:    st.UsedFreezes(),
		FreezeQuota:    st.FreezeQuota(),
		FreezeLimit:    st.HasReachedFreezeLimit(),
		TodayLearned:   i.engine.IsTodayLearned(),
		TodayFreezed:   i.engine.IsTodayFreezed(),
		PeriodFinished: st.PeriodFinished,
		Today:          i.engine.Today().Midnight(loc),
	}
}

func (i *Interactor) weekLocked(start domain.Day) dto.WeekOutput {
	loc := i.engine.Location()
	labels := domain.WeekdayLabels(start.Weekday())
	row := i.engine.ViewedWeek()
	out := dto.WeekOutput{Start: start.Midnight(loc), Days: make([]dto.WeekDayOutput, 0, len(row))}
	for idx, d := range row {
		out.Days = append(out.Days, dto.WeekDayOutput{
			Date:     d.Day.Midnight(loc),
			Label:    labels[idx],
			Status:   string(d.Status),
			Today:    d.Today,
			InPeriod: d.InPeriod,
		})
	}
	return out
}

func toTimes(s domain.DaySet, loc *time.Location) []time.Time {
	days := s.Sorted()
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		out = append(out, d.Midnight(loc))
	}
	return out
}
