package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"learnjourney/internal/modules/goal/domain"
	goalout "learnjourney/internal/modules/goal/port/out"
)

type SQLiteHistoryArchive struct {
	db *sql.DB
}

func NewSQLiteHistoryArchive(ctx context.Context, db *sql.DB) (goalout.HistoryArchive, error) {
	archive := &SQLiteHistoryArchive{db: db}
	if err := archive.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

func (s *SQLiteHistoryArchive) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS goal_history (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  goal_id TEXT NOT NULL,
  title TEXT NOT NULL,
  duration TEXT NOT NULL,
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  learned_days INTEGER NOT NULL,
  freezed_days INTEGER NOT NULL,
  streak INTEGER NOT NULL,
  period_finished INTEGER NOT NULL,
  archived_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create goal_history table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryArchive) Append(ctx context.Context, goal domain.ArchivedGoal) error {
	const stmt = `
INSERT INTO goal_history (goal_id, title, duration, start_date, end_date, learned_days, freezed_days, streak, period_finished, archived_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		goal.GoalID,
		goal.Title,
		string(goal.Duration),
		goal.StartDate.String(),
		goal.EndDate.String(),
		goal.LearnedDays,
		goal.FreezedDays,
		goal.Streak,
		goal.PeriodFinished,
		goal.ArchivedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert goal history: %w", err)
	}
	return nil
}

// List returns archived goals newest first.
func (s *SQLiteHistoryArchive) List(ctx context.Context) ([]domain.ArchivedGoal, error) {
	const query = `
SELECT goal_id, title, duration, start_date, end_date, learned_days, freezed_days, streak, period_finished, archived_at
FROM goal_history
ORDER BY seq DESC;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query goal history: %w", err)
	}
	defer rows.Close()

	out := []domain.ArchivedGoal{}
	for rows.Next() {
		var (
			g                        domain.ArchivedGoal
			duration, start, end, at string
		)
		if err := rows.Scan(&g.GoalID, &g.Title, &duration, &start, &end, &g.LearnedDays, &g.FreezedDays, &g.Streak, &g.PeriodFinished, &at); err != nil {
			return nil, fmt.Errorf("scan goal history: %w", err)
		}
		g.Duration = domain.DurationKind(duration)
		if g.StartDate, err = domain.ParseDay(start); err != nil {
			return nil, fmt.Errorf("goal history start date: %w", err)
		}
		if g.EndDate, err = domain.ParseDay(end); err != nil {
			return nil, fmt.Errorf("goal history end date: %w", err)
		}
		if g.ArchivedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("goal history archived at: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read goal history: %w", err)
	}
	return out, nil
}
