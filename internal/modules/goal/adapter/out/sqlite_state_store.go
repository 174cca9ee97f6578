package out

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	goalout "learnjourney/internal/modules/goal/port/out"
)

type SQLiteStateStore struct {
	db *sql.DB
}

func NewSQLiteStateStore(ctx context.Context, db *sql.DB) (goalout.DurableStore, error) {
	store := &SQLiteStateStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStateStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS goal_state (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create goal_state table: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := map[string][]byte{}
	if len(keys) == 0 {
		return out, nil
	}
	query := `SELECT key, value FROM goal_state WHERE key IN (?` + strings.Repeat(", ?", len(keys)-1) + `)`
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goal state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan goal state: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read goal state: %w", err)
	}
	return out, nil
}

func (s *SQLiteStateStore) Save(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin goal state write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stmt = `
INSERT INTO goal_state (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at;
`
	now := time.Now().UTC().Format(time.RFC3339)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := entries[k]
		if value == nil {
			value = []byte{}
		}
		if _, err := tx.ExecContext(ctx, stmt, k, value, now); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goal state: %w", err)
	}
	return nil
}
