package domain

import (
	"fmt"
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar day with no time-of-day or zone. It is comparable and can
// key maps; Midnight converts it back to an instant in a given location.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// DayOf truncates t to its calendar day in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t), nil
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Dom+n, 12, 0, 0, 0, time.UTC))
}

// AddMonths moves by whole months, clamping to the last day of a shorter
// target month (Jan 31 + 1 month = Feb 28/29).
func (d Day) AddMonths(n int) Day {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 12, 0, 0, 0, time.UTC)
	dom := d.Dom
	if last := daysIn(first.Year(), first.Month()); dom > last {
		dom = last
	}
	return Day{Year: first.Year(), Month: first.Month(), Dom: dom}
}

func (d Day) AddYears(n int) Day {
	return d.AddMonths(12 * n)
}

func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Dom, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Dom < o.Dom
}

func (d Day) After(o Day) bool {
	return o.Before(d)
}

// DaysUntil counts calendar days from d to o (negative when o is earlier).
func (d Day) DaysUntil(o Day) int {
	a := time.Date(d.Year, d.Month, d.Dom, 12, 0, 0, 0, time.UTC)
	b := time.Date(o.Year, o.Month, o.Dom, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// StartOfWeek returns the most recent day on or before d that falls on first.
func (d Day) StartOfWeek(first time.Weekday) Day {
	back := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDays(-back)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Dom)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// DaySet is an unordered set of calendar days.
type DaySet map[Day]struct{}

func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s DaySet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

// Add inserts d and reports whether it was absent.
func (s DaySet) Add(d Day) bool {
	if s.Has(d) {
		return false
	}
	s[d] = struct{}{}
	return true
}

func (s DaySet) Len() int {
	return len(s)
}

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s DaySet) Clone() DaySet {
	out := make(DaySet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

func (s DaySet) Equal(o DaySet) bool {
	if len(s) != len(o) {
		return false
	}
	for d := range s {
		if !o.Has(d) {
			return false
		}
	}
	return true
}
