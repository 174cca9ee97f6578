package service_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnjourney/internal/modules/goal/domain"
	"learnjourney/internal/modules/goal/service"
	"learnjourney/internal/platform/clock"
	apperrors "learnjourney/internal/platform/errors"
)

var testZone = time.FixedZone("UTC+3", 3*3600)

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, testZone)
}

type engineFixture struct {
	clock *clock.Manual
	store *fakeStore
	ids   *seqIDs
}

func newFixture(start time.Time) *engineFixture {
	return &engineFixture{clock: clock.NewManual(start), store: newFakeStore(), ids: &seqIDs{}}
}

func (f *engineFixture) engine(t *testing.T, policy domain.CompletionPolicy) *service.Engine {
	t.Helper()
	e, err := service.NewEngine(context.Background(), f.clock, f.ids, f.store, service.Options{
		Location:   testZone,
		WeekStart:  time.Sunday,
		Completion: policy,
	})
	require.NoError(t, err)
	return e
}

func (f *engineFixture) startGoal(t *testing.T, e *service.Engine, kind domain.DurationKind) {
	t.Helper()
	require.NoError(t, e.ResetForNewGoal(context.Background(), "Swift", kind))
}

func storedDays(t *testing.T, s *fakeStore, key string) []int64 {
	t.Helper()
	var stamps []int64
	require.NoError(t, json.Unmarshal([]byte(s.get(key)), &stamps))
	return stamps
}

func TestFirstUseDefaults(t *testing.T) {
	t.Parallel()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")

	st := e.State()
	assert.Equal(t, "goal-1", st.GoalID)
	assert.Equal(t, "", st.Title)
	assert.Equal(t, domain.DurationWeek, st.Duration)
	assert.Equal(t, "2026-10-19", st.StartDate.String())
	assert.Zero(t, st.CurrentStreak)
	assert.False(t, e.IsTodayLearned())
	assert.False(t, e.IsTodayFreezed())
	assert.Equal(t, "goal-1", f.store.get(service.KeyGoalID))

	// A second start reuses the persisted id and start date.
	f.clock.Advance(24 * time.Hour)
	again := f.engine(t, "")
	assert.Equal(t, "goal-1", again.State().GoalID)
	assert.Equal(t, "2026-10-19", again.State().StartDate.String())
}

func TestRecordLearnedIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)

	out, err := e.RecordLearned(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRecorded, out)
	saves := f.store.saves

	out, err = e.RecordLearned(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyLearned, out)
	assert.Equal(t, saves, f.store.saves, "duplicate must not write")
	assert.Equal(t, 1, e.State().CurrentStreak)
	assert.Equal(t, 1, e.UsedLearned())
	assert.True(t, e.IsTodayLearned())
	assert.Equal(t, "1", f.store.get(service.KeyCurrentStreak))
}

func TestLearnedAndFreezedStayDisjoint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)

	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)
	out, err := e.RecordFreezed(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyLearned, out)
	assert.Zero(t, e.UsedFreezes())

	f.clock.Advance(24 * time.Hour)
	e.RefreshToday()
	out, err = e.RecordFreezed(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRecorded, out)
	assert.True(t, e.IsTodayFreezed())
	assert.False(t, e.IsTodayLearned())
	assert.Equal(t, 1, e.State().CurrentStreak, "freeze keeps the streak")

	out, err = e.RecordLearned(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyFreezed, out)
	require.NoError(t, e.State().Validate())
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	for _, kind := range []domain.DurationKind{domain.DurationWeek, domain.DurationMonth, domain.DurationYear} {
		f := newFixture(at(1, 9))
		e := f.engine(t, "")
		f.startGoal(t, e, kind)
		start := e.State().StartDate
		for i := 0; i < 400; i++ {
			d := start.AddDays(rng.Intn(60))
			var err error
			if rng.Intn(2) == 0 {
				_, err = e.RecordLearnedOn(ctx, d)
			} else {
				_, err = e.RecordFreezedOn(ctx, d)
			}
			require.NoError(t, err)
			require.NoError(t, e.State().Validate(), "kind %s step %d", kind, i)
			require.LessOrEqual(t, e.UsedFreezes(), domain.FreezeQuota(kind))
		}
	}
}

func TestFreezeBeyondQuotaIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)
	require.Equal(t, 2, e.FreezeQuota())

	for i := 0; i < 2; i++ {
		out, err := e.RecordFreezed(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeRecorded, out)
		f.clock.Advance(24 * time.Hour)
		e.RefreshToday()
	}
	require.True(t, e.HasReachedFreezeLimit())

	out, err := e.RecordFreezed(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFreezeLimitReached, out)
	assert.Equal(t, 2, e.UsedFreezes())
	assert.False(t, e.IsTodayFreezed())
	assert.Len(t, storedDays(t, f.store, service.KeyFreezedDates), 2)
}

func TestStreakDecaysAfterThirtyTwoHours(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)

	// The window runs from the log at 10:00, so it closes at 18:00 next day.
	f.clock.Set(at(20, 18))
	decayed, err := e.CheckStreakValidity(ctx)
	require.NoError(t, err)
	assert.False(t, decayed)
	assert.Equal(t, 1, e.State().CurrentStreak)

	f.clock.Advance(time.Minute)
	decayed, err = e.CheckStreakValidity(ctx)
	require.NoError(t, err)
	assert.True(t, decayed)
	assert.Zero(t, e.State().CurrentStreak)
	assert.Equal(t, "0", f.store.get(service.KeyCurrentStreak))
	assert.Equal(t, 1, e.UsedLearned(), "decay keeps the log")
}

func TestEveningLogsBuildStreakAcrossRestarts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(10, 20))
	for day := 10; day <= 13; day++ {
		f.clock.Set(at(day, 20))
		// Every CLI command loads a fresh engine.
		e := f.engine(t, "")
		if day == 10 {
			f.startGoal(t, e, domain.DurationMonth)
		}
		out, err := e.RecordLearned(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeRecorded, out)
		assert.Equal(t, day-9, e.State().CurrentStreak, "streak on day %d", day)
	}
	assert.Equal(t, "2026-10-13T20:00:00+03:00", f.store.get(service.KeyLastActiveDate))
}

func TestSkippedDayDecaysFromLogInstant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(10, 20))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)

	// Nothing on the 11th. 32h after 20:00 on the 10th is 04:00 on the 12th.
	f.clock.Set(at(12, 4))
	assert.Equal(t, 1, f.engine(t, "").State().CurrentStreak)

	f.clock.Set(at(12, 5))
	late := f.engine(t, "")
	assert.Zero(t, late.State().CurrentStreak)
	_, err = late.RecordLearned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, late.State().CurrentStreak)
}

func TestFreezeExtendsDecayWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(10, 21))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)

	f.clock.Set(at(11, 22))
	_, err = f.engine(t, "").RecordFreezed(ctx)
	require.NoError(t, err)

	f.clock.Set(at(12, 21))
	e = f.engine(t, "")
	require.Equal(t, 1, e.State().CurrentStreak)
	_, err = e.RecordLearned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, e.State().CurrentStreak)
}

func TestResidentEngineKeepsOtherProcessLogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(10, 20))
	resident := f.engine(t, "")
	f.startGoal(t, resident, domain.DurationMonth)
	_, err := resident.RecordLearned(ctx)
	require.NoError(t, err)

	f.clock.Set(at(11, 20))
	cli := f.engine(t, "")
	_, err = cli.RecordLearned(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, cli.State().CurrentStreak)

	f.clock.Set(at(12, 0))
	require.NoError(t, resident.Reload(ctx))
	require.NoError(t, resident.Rollover(ctx))
	assert.Equal(t, 2, resident.UsedLearned())
	assert.Equal(t, 2, resident.State().CurrentStreak)

	fresh := f.engine(t, "")
	assert.Equal(t, 2, fresh.UsedLearned())
	assert.Equal(t, 2, fresh.State().CurrentStreak)
}

func TestStaleEngineWritesOnlyTouchedKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(10, 20))
	stale := f.engine(t, "")
	f.startGoal(t, stale, domain.DurationMonth)
	_, err := stale.RecordLearned(ctx)
	require.NoError(t, err)

	f.clock.Set(at(11, 20))
	_, err = f.engine(t, "").RecordLearned(ctx)
	require.NoError(t, err)

	// The stale engine never saw the 11th and freezes the 12th without reloading.
	f.clock.Set(at(12, 9))
	stale.RefreshToday()
	out, err := stale.RecordFreezed(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeRecorded, out)

	fresh := f.engine(t, "")
	assert.Equal(t, 2, fresh.UsedLearned())
	assert.Equal(t, 1, fresh.UsedFreezes())
	assert.Equal(t, 2, fresh.State().CurrentStreak)
}

func TestStreakDecayAppliesOnLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 10))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	for i := 0; i < 3; i++ {
		_, err := e.RecordLearned(ctx)
		require.NoError(t, err)
		f.clock.Advance(24 * time.Hour)
		e.RefreshToday()
	}
	require.Equal(t, 3, e.State().CurrentStreak)

	f.clock.Advance(72 * time.Hour)
	reloaded := f.engine(t, "")
	assert.Zero(t, reloaded.State().CurrentStreak)
	assert.Equal(t, 3, reloaded.UsedLearned())
}

func TestRolloverRefreshesTodayAndDecays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 23))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)
	require.True(t, e.IsTodayLearned())

	f.clock.Set(at(20, 0))
	require.NoError(t, e.Rollover(ctx))
	assert.False(t, e.IsTodayLearned())
	assert.Equal(t, "2026-10-20", e.Today().String())
	assert.Equal(t, 1, e.State().CurrentStreak)

	f.clock.Set(at(21, 0))
	require.NoError(t, e.Rollover(ctx))
	assert.Zero(t, e.State().CurrentStreak)
}

func TestWeekCompletesOnlyOnEndDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(at(19, 9))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)
	require.Equal(t, "2026-10-26", e.PeriodEndDate().String())
	for i := 0; i < 7; i++ {
		_, err := e.RecordLearned(ctx)
		require.NoError(t, err)
		require.False(t, e.State().PeriodFinished, "day %d", i)
		f.clock.Advance(24 * time.Hour)
		e.RefreshToday()
	}
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)
	assert.True(t, e.State().PeriodFinished)
	assert.Equal(t, "true", f.store.get(service.KeyPeriodFinished))
	assert.Equal(t, 8, e.State().CurrentStreak)
}

func TestCompletionPolicyAfterEndDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cases := []struct {
		policy domain.CompletionPolicy
		want   bool
	}{
		{domain.CompletionExact, false},
		{domain.CompletionOnOrAfter, true},
	}
	for _, tc := range cases {
		f := newFixture(at(19, 9))
		e := f.engine(t, tc.policy)
		f.startGoal(t, e, domain.DurationWeek)

		// The end day passes without a log.
		f.clock.Set(at(27, 9))
		e.RefreshToday()
		_, err := e.RecordLearned(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, e.State().PeriodFinished, "policy %s", tc.policy)

		finished, err := e.EvaluatePeriodCompletion(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, finished)
	}
}

func TestResetAndRestartReplaceGoal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 9))
	e := f.engine(t, "")

	require.ErrorIs(t, e.RestartSameGoal(ctx), apperrors.ErrNoGoal)
	require.ErrorIs(t, e.ResetForNewGoal(ctx, "  ", domain.DurationWeek), apperrors.ErrInvalidInput)
	require.ErrorIs(t, e.ResetForNewGoal(ctx, "Go", "Decade"), apperrors.ErrUnknownDuration)

	f.startGoal(t, e, domain.DurationWeek)
	for i := 0; i < 8; i++ {
		if i == 3 {
			_, err := e.RecordFreezed(ctx)
			require.NoError(t, err)
		} else {
			_, err := e.RecordLearned(ctx)
			require.NoError(t, err)
		}
		f.clock.Advance(24 * time.Hour)
		e.RefreshToday()
	}
	require.True(t, e.State().PeriodFinished)
	firstID := e.State().GoalID

	require.NoError(t, e.RestartSameGoal(ctx))
	st := e.State()
	assert.Equal(t, "Swift", st.Title)
	assert.Equal(t, domain.DurationWeek, st.Duration)
	assert.Zero(t, st.UsedLearned())
	assert.Zero(t, st.UsedFreezes())
	assert.Zero(t, st.CurrentStreak)
	assert.False(t, st.PeriodFinished)
	assert.Equal(t, e.Today(), st.StartDate)
	assert.NotEqual(t, firstID, st.GoalID)

	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)
	require.NoError(t, e.ResetForNewGoal(ctx, "  Rust ", domain.DurationYear))
	st = e.State()
	assert.Equal(t, "Rust", st.Title)
	assert.Equal(t, domain.DurationYear, st.Duration)
	assert.Zero(t, st.UsedLearned())
	assert.Equal(t, 12, e.FreezeQuota())
	assert.Equal(t, "[]", f.store.get(service.KeyLearnedDates))
	assert.False(t, e.IsTodayLearned())
}

func TestStateSurvivesReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 9))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	for i := 0; i < 5; i++ {
		var err error
		if i == 3 {
			_, err = e.RecordFreezed(ctx)
		} else {
			_, err = e.RecordLearned(ctx)
		}
		require.NoError(t, err)
		if i < 4 {
			f.clock.Advance(24 * time.Hour)
			e.RefreshToday()
		}
	}
	before := e.State()
	require.Equal(t, 4, before.CurrentStreak)

	reloaded := f.engine(t, "")
	after := reloaded.State()
	assert.Equal(t, before.GoalID, after.GoalID)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Duration, after.Duration)
	assert.Equal(t, before.StartDate, after.StartDate)
	assert.Equal(t, before.LastActiveDate, after.LastActiveDate)
	assert.True(t, before.LastActiveAt.Equal(after.LastActiveAt))
	assert.Equal(t, before.CurrentStreak, after.CurrentStreak)
	assert.Equal(t, before.PeriodFinished, after.PeriodFinished)
	assert.True(t, before.LearnedDays.Equal(after.LearnedDays))
	assert.True(t, before.FreezedDays.Equal(after.FreezedDays))
	assert.True(t, reloaded.IsTodayLearned())
}

func TestCorruptDaySetLoadsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(at(19, 9))
	f.store.set(service.KeyGoalID, "goal-x")
	f.store.set(service.KeyTitle, "Swift")
	f.store.set(service.KeyDuration, "Week")
	f.store.set(service.KeyLearnedDates, "{not json")
	f.store.set(service.KeyFreezedDates, "[1760821200]")

	e := f.engine(t, "")
	st := e.State()
	assert.Equal(t, "Swift", st.Title)
	assert.Zero(t, st.UsedLearned())
	assert.Equal(t, 1, st.UsedFreezes())
}

func TestSaveFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(19, 9))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationWeek)

	f.store.fail(true)
	_, err := e.RecordLearned(ctx)
	require.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, e.UsedLearned())
	assert.False(t, e.IsTodayLearned())
	require.ErrorIs(t, e.ResetForNewGoal(ctx, "Rust", domain.DurationYear), errStoreDown)
	assert.Equal(t, "Swift", e.State().Title)
}

func TestChangeViewedWeek(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(at(21, 9))
	e := f.engine(t, "")
	f.startGoal(t, e, domain.DurationMonth)
	_, err := e.RecordLearned(ctx)
	require.NoError(t, err)

	row := e.ViewedWeek()
	require.Len(t, row, 7)
	assert.Equal(t, "2026-10-18", row[0].Day.String())
	assert.True(t, row[3].Today)
	assert.Equal(t, domain.DayLearned, row[3].Status)

	assert.Equal(t, "2026-10-11", e.ChangeViewedWeek(-1).String())
	assert.Equal(t, "2026-11-01", e.ChangeViewedWeek(3).String())
	for _, d := range e.ViewedWeek() {
		assert.False(t, d.Today)
	}
}
