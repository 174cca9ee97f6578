package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "learnjourney/internal/platform/errors"
)

type DurationKind string

const (
	DurationWeek  DurationKind = "Week"
	DurationMonth DurationKind = "Month"
	DurationYear  DurationKind = "Year"
)

// StreakDecayWindow is how long after the last active day the streak
// survives without a new log.
const StreakDecayWindow = 32 * time.Hour

const defaultFreezeQuota = 2

// ParseDurationKind accepts the kind in any letter case.
func ParseDurationKind(s string) (DurationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week":
		return DurationWeek, nil
	case "month":
		return DurationMonth, nil
	case "year":
		return DurationYear, nil
	default:
		return "", fmt.Errorf("%w: %q (want week, month or year)", apperrors.ErrUnknownDuration, s)
	}
}

func (k DurationKind) Validate() error {
	switch k {
	case DurationWeek, DurationMonth, DurationYear:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownDuration, string(k))
	}
}

// FreezeQuota is the number of freeze days allowed per period.
func FreezeQuota(k DurationKind) int {
	switch k {
	case DurationWeek:
		return 2
	case DurationMonth:
		return 4
	case DurationYear:
		return 12
	default:
		return defaultFreezeQuota
	}
}

// PeriodEnd is the day the period that began on start ends.
func PeriodEnd(start Day, k DurationKind) Day {
	switch k {
	case DurationMonth:
		return start.AddMonths(1)
	case DurationYear:
		return start.AddYears(1)
	default:
		return start.AddDays(7)
	}
}

// CompletionPolicy decides which days count as reaching the period end.
type CompletionPolicy string

const (
	// CompletionExact only flags completion when a log lands on the end day itself.
	CompletionExact CompletionPolicy = "exact"
	// CompletionOnOrAfter also flags completion for logs after the end day.
	CompletionOnOrAfter CompletionPolicy = "on_or_after"
)

func ParseCompletionPolicy(s string) (CompletionPolicy, error) {
	switch p := CompletionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CompletionExact, nil
	case CompletionExact, CompletionOnOrAfter:
		return p, nil
	default:
		return "", fmt.Errorf("%w: completion policy %q", apperrors.ErrInvalidInput, s)
	}
}

func (p CompletionPolicy) Reached(today, end Day) bool {
	if p == CompletionOnOrAfter {
		return !today.Before(end)
	}
	return today == end
}

type DayStatus string

const (
	DayNone    DayStatus = ""
	DayLearned DayStatus = "learned"
	DayFreezed DayStatus = "freezed"
)

// Outcome reports what a logging operation did.
type Outcome string

const (
	OutcomeRecorded           Outcome = "recorded"
	OutcomeAlreadyLearned     Outcome = "already_learned"
	OutcomeAlreadyFreezed     Outcome = "already_freezed"
	OutcomeFreezeLimitReached Outcome = "freeze_limit_reached"
)

func (o Outcome) Recorded() bool {
	return o == OutcomeRecorded
}

// GoalState is the single mutable aggregate behind the tracker.
type GoalState struct {
	GoalID         string
	Title          string
	Duration       DurationKind
	StartDate      Day
	LearnedDays    DaySet
	FreezedDays    DaySet
	CurrentStreak  int
	LastActiveDate Day
	// LastActiveAt is the instant of the last learned or freezed log.
	// Zero for state written before instants were kept.
	LastActiveAt   time.Time
	PeriodFinished bool
}

// NewGoalState is the first-use state: no title, a weekly period starting today.
func NewGoalState(goalID string, today Day) GoalState {
	return GoalState{
		GoalID:         goalID,
		Duration:       DurationWeek,
		StartDate:      today,
		LearnedDays:    NewDaySet(),
		FreezedDays:    NewDaySet(),
		LastActiveDate: today,
	}
}

// LastActiveInstant is the moment the decay window is measured from. It
// falls back to the local midnight of LastActiveDate when no instant is known.
func (g GoalState) LastActiveInstant(loc *time.Location) time.Time {
	if !g.LastActiveAt.IsZero() {
		return g.LastActiveAt
	}
	return g.LastActiveDate.Midnight(loc)
}

func (g GoalState) HasGoal() bool {
	return strings.TrimSpace(g.Title) != ""
}

func (g GoalState) PeriodEndDate() Day {
	return PeriodEnd(g.StartDate, g.Duration)
}

func (g GoalState) FreezeQuota() int {
	return FreezeQuota(g.Duration)
}

func (g GoalState) UsedFreezes() int {
	return g.FreezedDays.Len()
}

func (g GoalState) UsedLearned() int {
	return g.LearnedDays.Len()
}

func (g GoalState) HasReachedFreezeLimit() bool {
	return g.UsedFreezes() >= g.FreezeQuota()
}

func (g GoalState) StatusOf(d Day) DayStatus {
	switch {
	case g.LearnedDays.Has(d):
		return DayLearned
	case g.FreezedDays.Has(d):
		return DayFreezed
	default:
		return DayNone
	}
}

// InPeriod reports whether d lies between the start day and the end day inclusive.
func (g GoalState) InPeriod(d Day) bool {
	return !d.Before(g.StartDate) && !d.After(g.PeriodEndDate())
}

// Clone deep-copies the day sets.
func (g GoalState) Clone() GoalState {
	out := g
	out.LearnedDays = g.LearnedDays.Clone()
	out.FreezedDays = g.FreezedDays.Clone()
	return out
}

func (g GoalState) Validate() error {
	if err := g.Duration.Validate(); err != nil {
		return err
	}
	if g.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", apperrors.ErrInvalidInput)
	}
	if g.CurrentStreak < 0 {
		return fmt.Errorf("%w: negative streak %d", apperrors.ErrInvalidInput, g.CurrentStreak)
	}
	for d := range g.LearnedDays {
		if g.FreezedDays.Has(d) {
			return fmt.Errorf("%w: %s is both learned and freezed", apperrors.ErrInvalidInput, d)
		}
	}
	if g.UsedFreezes() > g.FreezeQuota() {
		return fmt.Errorf("%w: %d freezes exceed quota %d", apperrors.ErrInvalidInput, g.UsedFreezes(), g.FreezeQuota())
	}
	return nil
}

// ArchivedGoal is the summary kept for a goal after it was reset or restarted.
type ArchivedGoal struct {
	GoalID         string
	Title          string
	Duration       DurationKind
	StartDate      Day
	EndDate        Day
	LearnedDays    int
	FreezedDays    int
	Streak         int
	PeriodFinished bool
	ArchivedAt     time.Time
}

func Archive(g GoalState, at time.Time) ArchivedGoal {
	return ArchivedGoal{
		GoalID:         g.GoalID,
		Title:          g.Title,
		Duration:       g.Duration,
		StartDate:      g.StartDate,
		EndDate:        g.PeriodEndDate(),
		LearnedDays:    g.UsedLearned(),
		FreezedDays:    g.UsedFreezes(),
		Streak:         g.CurrentStreak,
		PeriodFinished: g.PeriodFinished,
		ArchivedAt:     at,
	}
}
