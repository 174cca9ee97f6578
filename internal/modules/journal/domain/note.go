package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "learnjourney/internal/platform/errors"
)

const (
	ManagedDaysStart = "<!-- learnjourney:days:start -->"
	ManagedDaysEnd   = "<!-- learnjourney:days:end -->"
	SchemaVersion    = 1
)

type Entry struct {
	Date   time.Time
	Status string
}

// Note is the journal view of one goal period.
type Note struct {
	GoalID      string
	Title       string
	Duration    string
	Start       time.Time
	End         time.Time
	Streak      int
	UsedLearned int
	UsedFreezes int
	FreezeQuota int
	Finished    bool
	Entries     []Entry
	ExportedAt  time.Time
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.GoalID) == "" {
		return fmt.Errorf("%w: goal id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(n.Title) == "" {
		return apperrors.ErrNoGoal
	}
	return nil
}

// Meta is the frontmatter written at the top of a journal note.
type Meta struct {
	SchemaVersion int    `yaml:"schema_version"`
	GoalID        string `yaml:"goal_id"`
	Title         string `yaml:"title"`
	Duration      string `yaml:"duration"`
	Start         string `yaml:"start"`
	End           string `yaml:"end"`
	Streak        int    `yaml:"streak"`
	LearnedDays   int    `yaml:"learned_days"`
	FreezesUsed   int    `yaml:"freezes_used"`
	FreezeQuota   int    `yaml:"freeze_quota"`
	Finished      bool   `yaml:"finished"`
	ExportedAt    string `yaml:"exported_at"`
}
