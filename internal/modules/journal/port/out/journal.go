package out

import (
	"context"

	"learnjourney/internal/modules/journal/domain"
)

type NoteStore interface {
	// Read returns apperrors.ErrNotFound when the note does not exist yet.
	Read(ctx context.Context, name string) (string, error)
	Write(ctx context.Context, name, content string) (string, error)
}

type GoalSource interface {
	Current(ctx context.Context) (domain.Note, error)
}
