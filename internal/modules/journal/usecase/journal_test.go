package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	journalout "learnjourney/internal/modules/journal/adapter/out"
	"learnjourney/internal/modules/journal/domain"
	"learnjourney/internal/modules/journal/service"
	"learnjourney/internal/modules/journal/usecase"
	"learnjourney/internal/platform/clock"
	apperrors "learnjourney/internal/platform/errors"
)

type fakeGoals struct {
	note domain.Note
	err  error
}

func (f *fakeGoals) Current(context.Context) (domain.Note, error) {
	return f.note, f.err
}

func TestExportCreatesThenUpdatesNote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "journal")
	goals := &fakeGoals{note: domain.Note{
		GoalID:   "goal-1234567890",
		Title:    "Swift",
		Duration: "Week",
		Start:    time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC),
		Entries:  []domain.Entry{{Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Status: "learned"}},
	}}
	uc := usecase.NewInteractor(goals, journalout.NewFileNoteStore(dir), service.NewRenderer(), clock.NewManual(time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)))

	out, err := uc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !out.Created || out.Days != 1 || out.Path != filepath.Join(dir, "swift-goal-123.md") {
		t.Fatalf("unexpected output %+v", out)
	}

	content, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	edited := strings.Replace(string(content), "## Reflections\n", "## Reflections\n\nGood start.\n", 1)
	if err := os.WriteFile(out.Path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}

	out, err = uc.Export(ctx)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if out.Created {
		t.Fatalf("second export should update in place")
	}
	content, _ = os.ReadFile(out.Path)
	if !strings.Contains(string(content), "Good start.") {
		t.Fatalf("user text lost:\n%s", content)
	}
	if _, err := os.Stat(out.Path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestExportWithoutGoal(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(&fakeGoals{err: apperrors.ErrNoGoal}, journalout.NewFileNoteStore(t.TempDir()), service.NewRenderer(), clock.NewManual(time.Now()))
	if _, err := uc.Export(context.Background()); !errors.Is(err, apperrors.ErrNoGoal) {
		t.Fatalf("expected ErrNoGoal, got %v", err)
	}
}
