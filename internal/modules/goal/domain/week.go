package domain

import "time"

// WeekDay is one cell of the seven-day calendar row.
type WeekDay struct {
	Day      Day
	Status   DayStatus
	Today    bool
	InPeriod bool
}

// Week lays out the seven days starting at start, marked against g.
func Week(g GoalState, start, today Day) []WeekDay {
	out := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDays(i)
		out = append(out, WeekDay{
			Day:      d,
			Status:   g.StatusOf(d),
			Today:    d == today,
			InPeriod: g.InPeriod(d),
		})
	}
	return out
}

// WeekdayLabels returns upper-case three-letter labels in calendar-row order.
func WeekdayLabels(first time.Weekday) []string {
	labels := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(first) + i) % 7)
		labels = append(labels, upperShort(wd))
	}
	return labels
}

func upperShort(wd time.Weekday) string {
	return [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}[wd]
}
