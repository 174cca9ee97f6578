package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"learnjourney/internal/modules/goal/domain"
)

// Store keys. These names are the on-disk contract and must not change.
const (
	KeyLearnedDates   = "learnedDatesData"
	KeyFreezedDates   = "freezedDatesData"
	KeyDuration       = "selectedDuration"
	KeyTitle          = "selectedLearning"
	KeyStartDate      = "learningStartDate"
	KeyLastActiveDate = "lastActiveDate"
	KeyCurrentStreak  = "currentStreak"
	KeyPeriodFinished = "periodFinished"
	KeyGoalID         = "goalID"
)

var stateKeys = []string{
	KeyLearnedDates,
	KeyFreezedDates,
	KeyDuration,
	KeyTitle,
	KeyStartDate,
	KeyLastActiveDate,
	KeyCurrentStreak,
	KeyPeriodFinished,
	KeyGoalID,
}

// EncodeState renders every persisted field of g as store entries.
// Day sets become JSON arrays of local-midnight Unix seconds, ascending.
func EncodeState(g domain.GoalState, loc *time.Location) (map[string][]byte, error) {
	learned, err := encodeDaySet(g.LearnedDays, loc)
	if err != nil {
		return nil, err
	}
	freezed, err := encodeDaySet(g.FreezedDays, loc)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{
		KeyLearnedDates:   learned,
		KeyFreezedDates:   freezed,
		KeyDuration:       []byte(g.Duration),
		KeyTitle:          []byte(g.Title),
		KeyStartDate:      []byte(g.StartDate.Midnight(loc).Format(time.RFC3339)),
		KeyLastActiveDate: []byte(g.LastActiveInstant(loc).In(loc).Format(time.RFC3339)),
		KeyCurrentStreak:  []byte(strconv.Itoa(g.CurrentStreak)),
		KeyPeriodFinished: []byte(strconv.FormatBool(g.PeriodFinished)),
		KeyGoalID:         []byte(g.GoalID),
	}, nil
}

// DecodeState rebuilds a GoalState from store entries. Missing entries take
// first-use defaults and unreadable ones degrade to defaults with a warning;
// decoding never fails. found reports whether any entry was present.
func DecodeState(entries map[string][]byte, loc *time.Location, today domain.Day, log hclog.Logger) (g domain.GoalState, found bool) {
	g = domain.NewGoalState(string(entries[KeyGoalID]), today)
	found = len(entries) > 0

	g.LearnedDays = decodeDaySet(entries, KeyLearnedDates, loc, log)
	g.FreezedDays = decodeDaySet(entries, KeyFreezedDates, loc, log)
	g.Title = string(entries[KeyTitle])

	if raw, ok := entries[KeyDuration]; ok {
		kind, err := domain.ParseDurationKind(string(raw))
		if err != nil {
			log.Warn("unreadable duration, using default", "key", KeyDuration, "value", string(raw))
		} else {
			g.Duration = kind
		}
	}
	if d, ok := decodeDay(entries, KeyStartDate, loc, log); ok {
		g.StartDate = d
	}
	g.LastActiveDate = g.StartDate
	if t, ok := decodeTime(entries, KeyLastActiveDate, loc, log); ok {
		g.LastActiveDate = domain.DayOf(t)
		g.LastActiveAt = t
	}
	if raw, ok := entries[KeyCurrentStreak]; ok {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n < 0 {
			log.Warn("unreadable streak, using 0", "key", KeyCurrentStreak, "value", string(raw))
		} else {
			g.CurrentStreak = n
		}
	}
	if raw, ok := entries[KeyPeriodFinished]; ok {
		v, err := strconv.ParseBool(string(raw))
		if err != nil {
			log.Warn("unreadable period flag, using false", "key", KeyPeriodFinished, "value", string(raw))
		} else {
			g.PeriodFinished = v
		}
	}

	// A day stored in both sets counts as learned.
	for d := range g.LearnedDays {
		if g.FreezedDays.Has(d) {
			log.Warn("day stored as learned and freezed, keeping learned", "day", d.String())
			delete(g.FreezedDays, d)
		}
	}
	return g, found
}

func encodeDaySet(s domain.DaySet, loc *time.Location) ([]byte, error) {
	days := s.Sorted()
	stamps := make([]int64, 0, len(days))
	for _, d := range days {
		stamps = append(stamps, d.Midnight(loc).Unix())
	}
	return json.Marshal(stamps)
}

func decodeDaySet(entries map[string][]byte, key string, loc *time.Location, log hclog.Logger) domain.DaySet {
	raw, ok := entries[key]
	if !ok || len(raw) == 0 {
		return domain.NewDaySet()
	}
	var stamps []int64
	if err := json.Unmarshal(raw, &stamps); err != nil {
		log.Warn("unreadable day set, starting empty", "key", key, "error", err)
		return domain.NewDaySet()
	}
	out := domain.NewDaySet()
	for _, s := range stamps {
		out.Add(domain.DayOf(time.Unix(s, 0).In(loc)))
	}
	return out
}

func decodeDay(entries map[string][]byte, key string, loc *time.Location, log hclog.Logger) (domain.Day, bool) {
	t, ok := decodeTime(entries, key, loc, log)
	if !ok {
		return domain.Day{}, false
	}
	return domain.DayOf(t), true
}

func decodeTime(entries map[string][]byte, key string, loc *time.Location, log hclog.Logger) (time.Time, bool) {
	raw, ok := entries[key]
	if !ok || len(raw) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		log.Warn("unreadable date, using default", "key", key, "value", string(raw))
		return time.Time{}, false
	}
	return t.In(loc), true
}
