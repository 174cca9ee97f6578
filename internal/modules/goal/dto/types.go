package dto

import "time"

type GoalOutput struct {
	GoalID         string
	HasGoal        bool
	Title          string
	Duration       string
	StartDate      time.Time
	EndDate        time.Time
	LastActiveDate time.Time
	CurrentStreak  int
	LearnedDays    []time.Time
	FreezedDays    []time.Time
	UsedLearned    int
	UsedFreezes    int
	FreezeQuota    int
	FreezeLimit    bool
	TodayLearned   bool
	TodayFreezed   bool
	PeriodFinished bool
	Today          time.Time
}

type RecordOutput struct {
	Outcome string
	Goal    GoalOutput
}

type ResetInput struct {
	Title    string
	Duration string
}

type WeekDayOutput struct {
	Date     time.Time
	Label    string
	Status   string
	Today    bool
	InPeriod bool
}

type WeekOutput struct {
	Start time.Time
	Days  []WeekDayOutput
}

type HistoryItem struct {
	GoalID         string
	Title          string
	Duration       string
	StartDate      time.Time
	EndDate        time.Time
	LearnedDays    int
	FreezedDays    int
	Streak         int
	PeriodFinished bool
	ArchivedAt     time.Time
}
