package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	journalout "learnjourney/internal/modules/journal/port/out"
	apperrors "learnjourney/internal/platform/errors"
)

type FileNoteStore struct {
	dir string
}

func NewFileNoteStore(dir string) journalout.NoteStore {
	return &FileNoteStore{dir: dir}
}

func (s *FileNoteStore) Read(_ context.Context, name string) (string, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("read journal note: %w", err)
	}
	return string(payload), nil
}

func (s *FileNoteStore) Write(_ context.Context, name, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replace journal note: %w", err)
	}
	return path, nil
}
