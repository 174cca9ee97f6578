package in

import (
	"context"

	"learnjourney/internal/modules/goal/dto"
)

type Usecase interface {
	Snapshot(ctx context.Context) (dto.GoalOutput, error)
	RecordLearned(ctx context.Context) (dto.RecordOutput, error)
	RecordFreezed(ctx context.Context) (dto.RecordOutput, error)
	ResetForNewGoal(ctx context.Context, input dto.ResetInput) (dto.GoalOutput, error)
	RestartSameGoal(ctx context.Context) (dto.GoalOutput, error)
	ChangeViewedWeek(ctx context.Context, offset int) (dto.WeekOutput, error)
	Tick(ctx context.Context) (dto.GoalOutput, error)
	History(ctx context.Context) ([]dto.HistoryItem, error)
	// Subscribe registers fn for every state change. The returned func unregisters it.
	Subscribe(fn func(dto.GoalOutput)) (cancel func())
}
