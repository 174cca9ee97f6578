package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"learnjourney/internal/modules/journal/domain"
	"learnjourney/internal/modules/journal/service"
	apperrors "learnjourney/internal/platform/errors"
	"learnjourney/internal/platform/markdown"
)

func sampleNote() domain.Note {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	return domain.Note{
		GoalID:      "6f1c2a9e-0000-4000-8000-000000000000",
		Title:       "Learn Swift",
		Duration:    "Week",
		Start:       day(19),
		End:         day(26),
		Streak:      2,
		UsedLearned: 2,
		UsedFreezes: 1,
		FreezeQuota: 2,
		Entries: []domain.Entry{
			{Date: day(19), Status: "learned"},
			{Date: day(20), Status: "freezed"},
			{Date: day(21), Status: "learned"},
		},
		ExportedAt: time.Date(2026, 10, 21, 20, 0, 0, 0, time.UTC),
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()
	r := service.NewRenderer()
	if got := r.FileName(sampleNote()); got != "learn-swift-6f1c2a9e.md" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestRenderFreshNote(t *testing.T) {
	t.Parallel()
	content, err := service.NewRenderer().Render(sampleNote(), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var meta domain.Meta
	body, found, err := markdown.SplitFrontmatter(content, &meta)
	if err != nil || !found {
		t.Fatalf("split: found=%v err=%v", found, err)
	}
	if meta.Title != "Learn Swift" || meta.Start != "2026-10-19" || meta.End != "2026-10-26" || meta.FreezesUsed != 1 || meta.FreezeQuota != 2 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !strings.HasPrefix(strings.TrimLeft(body, "\n"), "# Learn Swift") {
		t.Fatalf("missing heading:\n%s", body)
	}
	days, ok := markdown.Block{Start: domain.ManagedDaysStart, End: domain.ManagedDaysEnd}.Extract(body)
	if !ok {
		t.Fatalf("managed block missing:\n%s", body)
	}
	want := "- [x] 2026-10-19 Mon learned\n- [~] 2026-10-20 Tue freezed\n- [x] 2026-10-21 Wed learned"
	if days != want {
		t.Fatalf("unexpected days:\n%s", days)
	}
}

func TestRenderKeepsUserText(t *testing.T) {
	t.Parallel()
	r := service.NewRenderer()
	first, err := r.Render(sampleNote(), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	edited := strings.Replace(first, "## Reflections\n", "## Reflections\n\nClosures finally clicked.\n", 1)

	note := sampleNote()
	note.Streak = 3
	note.Entries = append(note.Entries, domain.Entry{Date: time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), Status: "learned"})
	second, err := r.Render(note, edited)
	if err != nil {
		t.Fatalf("re-render: %v", err)
	}
	if !strings.Contains(second, "Closures finally clicked.") {
		t.Fatalf("user text lost:\n%s", second)
	}
	if !strings.Contains(second, "2026-10-22 Thu learned") || !strings.Contains(second, "streak: 3") {
		t.Fatalf("note not refreshed:\n%s", second)
	}
	if strings.Count(second, domain.ManagedDaysStart) != 1 {
		t.Fatalf("managed block duplicated:\n%s", second)
	}
}

func TestRenderRejectsMissingGoal(t *testing.T) {
	t.Parallel()
	note := sampleNote()
	note.Title = ""
	if _, err := service.NewRenderer().Render(note, ""); !errors.Is(err, apperrors.ErrNoGoal) {
		t.Fatalf("expected ErrNoGoal, got %v", err)
	}
}
