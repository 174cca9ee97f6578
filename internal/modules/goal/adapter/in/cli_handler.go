package in

import (
	"context"

	"learnjourney/internal/modules/goal/dto"
	goalin "learnjourney/internal/modules/goal/port/in"
)

type CLIHandler struct {
	usecase goalin.Usecase
}

func NewCLIHandler(usecase goalin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, title, duration string) (dto.GoalOutput, error) {
	return h.usecase.ResetForNewGoal(ctx, dto.ResetInput{Title: title, Duration: duration})
}

func (h CLIHandler) Restart(ctx context.Context) (dto.GoalOutput, error) {
	return h.usecase.RestartSameGoal(ctx)
}

func (h CLIHandler) Learned(ctx context.Context) (dto.RecordOutput, error) {
	return h.usecase.RecordLearned(ctx)
}

func (h CLIHandler) Freeze(ctx context.Context) (dto.RecordOutput, error) {
	return h.usecase.RecordFreezed(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.GoalOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Week(ctx context.Context, offset int) (dto.WeekOutput, error) {
	return h.usecase.ChangeViewedWeek(ctx, offset)
}

func (h CLIHandler) History(ctx context.Context) ([]dto.HistoryItem, error) {
	return h.usecase.History(ctx)
}
