package out

import (
	"context"

	goaldto "learnjourney/internal/modules/goal/dto"
	goalin "learnjourney/internal/modules/goal/port/in"
	"learnjourney/internal/modules/journal/domain"
	journalout "learnjourney/internal/modules/journal/port/out"
	apperrors "learnjourney/internal/platform/errors"
)

// GoalSnapshotSource reads the current goal through the goal module's usecase.
type GoalSnapshotSource struct {
	goals goalin.Usecase
}

func NewGoalSnapshotSource(goals goalin.Usecase) journalout.GoalSource {
	return &GoalSnapshotSource{goals: goals}
}

func (s *GoalSnapshotSource) Current(ctx context.Context) (domain.Note, error) {
	snap, err := s.goals.Snapshot(ctx)
	if err != nil {
		return domain.Note{}, err
	}
	if !snap.HasGoal {
		return domain.Note{}, apperrors.ErrNoGoal
	}
	return toNote(snap), nil
}

func toNote(snap goaldto.GoalOutput) domain.Note {
	entries := make([]domain.Entry, 0, len(snap.LearnedDays)+len(snap.FreezedDays))
	li, fi := 0, 0
	for li < len(snap.LearnedDays) || fi < len(snap.FreezedDays) {
		if fi >= len(snap.FreezedDays) || (li < len(snap.LearnedDays) && snap.LearnedDays[li].Before(snap.FreezedDays[fi])) {
			entries = append(entries, domain.Entry{Date: snap.LearnedDays[li], Status: "learned"})
			li++
			continue
		}
		entries = append(entries, domain.Entry{Date: snap.FreezedDays[fi], Status: "freezed"})
		fi++
	}
	return domain.Note{
		GoalID:      snap.GoalID,
		Title:       snap.Title,
		Duration:    snap.Duration,
		Start:       snap.StartDate,
		End:         snap.EndDate,
		Streak:      snap.CurrentStreak,
		UsedLearned: snap.UsedLearned,
		UsedFreezes: snap.UsedFreezes,
		FreezeQuota: snap.FreezeQuota,
		Finished:    snap.PeriodFinished,
		Entries:     entries,
	}
}
