package out

import (
	"context"

	"learnjourney/internal/modules/goal/domain"
)

// DurableStore is a flat key/value store. Load omits keys that were never saved.
// Save commits every entry of one batch or none of them.
type DurableStore interface {
	Load(ctx context.Context, keys ...string) (map[string][]byte, error)
	Save(ctx context.Context, entries map[string][]byte) error
}

type HistoryArchive interface {
	Append(ctx context.Context, goal domain.ArchivedGoal) error
	List(ctx context.Context) ([]domain.ArchivedGoal, error)
}
