package usecase

import (
	"context"
	"errors"

	"learnjourney/internal/modules/journal/dto"
	journalin "learnjourney/internal/modules/journal/port/in"
	journalout "learnjourney/internal/modules/journal/port/out"
	"learnjourney/internal/modules/journal/service"
	"learnjourney/internal/platform/clock"
	apperrors "learnjourney/internal/platform/errors"
)

type Interactor struct {
	goals    journalout.GoalSource
	notes    journalout.NoteStore
	renderer *service.Renderer
	clock    clock.Clock
}

func NewInteractor(goals journalout.GoalSource, notes journalout.NoteStore, renderer *service.Renderer, clk clock.Clock) journalin.Usecase {
	return &Interactor{goals: goals, notes: notes, renderer: renderer, clock: clk}
}

func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	note, err := i.goals.Current(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	note.ExportedAt = i.clock.Now()
	name := i.renderer.FileName(note)

	existing, err := i.notes.Read(ctx, name)
	created := false
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return dto.ExportOutput{}, err
		}
		created = true
		existing = ""
	}
	content, err := i.renderer.Render(note, existing)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	path, err := i.notes.Write(ctx, name, content)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Path: path, Created: created, Days: len(note.Entries)}, nil
}
