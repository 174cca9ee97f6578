package service

import (
	"fmt"
	"strings"
	"time"

	"learnjourney/internal/modules/journal/domain"
	"learnjourney/internal/platform/markdown"
	"learnjourney/internal/platform/slug"
)

const dateLayout = "2006-01-02"

var daysBlock = markdown.Block{Start: domain.ManagedDaysStart, End: domain.ManagedDaysEnd}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// FileName is stable for the lifetime of a goal period.
func (r *Renderer) FileName(note domain.Note) string {
	id := note.GoalID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s.md", slug.Make(note.Title), id)
}

// Render produces the note content. Text outside the managed block of
// existing is kept; its frontmatter is regenerated.
func (r *Renderer) Render(note domain.Note, existing string) (string, error) {
	if err := note.Validate(); err != nil {
		return "", err
	}
	body := ""
	if existing != "" {
		var old domain.Meta
		kept, _, err := markdown.SplitFrontmatter(existing, &old)
		if err != nil {
			return "", fmt.Errorf("parse existing journal note: %w", err)
		}
		body = kept
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# %s\n\n## Reflections\n\n", note.Title)
	}
	body = daysBlock.Replace(body, r.dayLines(note))
	return markdown.RenderFrontmatter(r.meta(note), body)
}

func (r *Renderer) meta(note domain.Note) domain.Meta {
	return domain.Meta{
		SchemaVersion: domain.SchemaVersion,
		GoalID:        note.GoalID,
		Title:         note.Title,
		Duration:      note.Duration,
		Start:         note.Start.Format(dateLayout),
		End:           note.End.Format(dateLayout),
		Streak:        note.Streak,
		LearnedDays:   note.UsedLearned,
		FreezesUsed:   note.UsedFreezes,
		FreezeQuota:   note.FreezeQuota,
		Finished:      note.Finished,
		ExportedAt:    note.ExportedAt.Format(time.RFC3339),
	}
}

func (r *Renderer) dayLines(note domain.Note) string {
	if len(note.Entries) == 0 {
		return "_No days logged yet._"
	}
	lines := make([]string, 0, len(note.Entries))
	for _, e := range note.Entries {
		mark := "x"
		if e.Status == "freezed" {
			mark = "~"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s %s %s", mark, e.Date.Format(dateLayout), e.Date.Weekday().String()[:3], e.Status))
	}
	return strings.Join(lines, "\n")
}
