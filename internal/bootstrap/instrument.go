package bootstrap

import (
	"context"

	goaldto "learnjourney/internal/modules/goal/dto"
	goalin "learnjourney/internal/modules/goal/port/in"
	"learnjourney/internal/platform/metrics"
)

// instrumented counts goal operations and refreshes the gauges after every
// successful mutation.
type instrumented struct {
	goalin.Usecase
	metrics *metrics.GoalMetrics
}

func instrument(uc goalin.Usecase, m *metrics.GoalMetrics) goalin.Usecase {
	return instrumented{Usecase: uc, metrics: m}
}

func (u instrumented) RecordLearned(ctx context.Context) (goaldto.RecordOutput, error) {
	out, err := u.Usecase.RecordLearned(ctx)
	u.observeRecord("learned", out, err)
	return out, err
}

func (u instrumented) RecordFreezed(ctx context.Context) (goaldto.RecordOutput, error) {
	out, err := u.Usecase.RecordFreezed(ctx)
	u.observeRecord("freeze", out, err)
	return out, err
}

func (u instrumented) ResetForNewGoal(ctx context.Context, input goaldto.ResetInput) (goaldto.GoalOutput, error) {
	out, err := u.Usecase.ResetForNewGoal(ctx, input)
	u.observe("reset", out, err)
	return out, err
}

func (u instrumented) RestartSameGoal(ctx context.Context) (goaldto.GoalOutput, error) {
	out, err := u.Usecase.RestartSameGoal(ctx)
	u.observe("restart", out, err)
	return out, err
}

func (u instrumented) Tick(ctx context.Context) (goaldto.GoalOutput, error) {
	out, err := u.Usecase.Tick(ctx)
	if err == nil {
		u.metrics.Rollover()
	}
	u.observe("tick", out, err)
	return out, err
}

func (u instrumented) observeRecord(op string, out goaldto.RecordOutput, err error) {
	if err != nil {
		u.metrics.Operation(op, "error")
		return
	}
	u.metrics.Operation(op, out.Outcome)
	u.metrics.Observe(sample(out.Goal))
}

func (u instrumented) observe(op string, out goaldto.GoalOutput, err error) {
	if err != nil {
		u.metrics.Operation(op, "error")
		return
	}
	u.metrics.Operation(op, "ok")
	u.metrics.Observe(sample(out))
}

func sample(out goaldto.GoalOutput) metrics.GoalSample {
	return metrics.GoalSample{
		Streak:      out.CurrentStreak,
		LearnedDays: out.UsedLearned,
		UsedFreezes: out.UsedFreezes,
		FreezeQuota: out.FreezeQuota,
		Finished:    out.PeriodFinished,
	}
}
