package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nadi/internal/modules/session/domain"
	sessionout "nadi/internal/modules/session/port/out"
	apperrors "nadi/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteHistoryStore projects finished sessions into a local sqlite index so
// history queries never have to rescan the markdown notes.
type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (sessionout.HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  elapsed_seconds INTEGER NOT NULL,
  cycle_count INTEGER NOT NULL,
  final_score INTEGER NOT NULL,
  breath_seconds INTEGER NOT NULL,
  session_seconds INTEGER NOT NULL,
  completed INTEGER NOT NULL,
  note_path TEXT
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) Project(ctx context.Context, record domain.Record) error {
	const stmt = `
INSERT INTO sessions (id, started_at, ended_at, elapsed_seconds, cycle_count, final_score, breath_seconds, session_seconds, completed, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  elapsed_seconds=excluded.elapsed_seconds,
  cycle_count=excluded.cycle_count,
  final_score=excluded.final_score,
  breath_seconds=excluded.breath_seconds,
  session_seconds=excluded.session_seconds,
  completed=excluded.completed,
  note_path=excluded.note_path;
`
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.StartedAt.Format(timeLayout),
		record.EndedAt.Format(timeLayout),
		record.ElapsedSeconds,
		record.CycleCount,
		record.FinalScore,
		record.BreathSeconds,
		record.SessionSeconds,
		boolToInt(record.Completed),
		record.NotePath,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) List(ctx context.Context, limit int) ([]domain.Record, error) {
	const query = `
SELECT id, started_at, ended_at, elapsed_seconds, cycle_count, final_score, breath_seconds, session_seconds, completed, note_path
FROM sessions ORDER BY started_at DESC LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

func (s *SQLiteHistoryStore) Get(ctx context.Context, id string) (domain.Record, error) {
	const query = `
SELECT id, started_at, ended_at, elapsed_seconds, cycle_count, final_score, breath_seconds, session_seconds, completed, note_path
FROM sessions WHERE id = ?;
`
	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var (
		record    domain.Record
		startedAt string
		endedAt   string
		completed int
	)
	if err := scan(
		&record.ID,
		&startedAt,
		&endedAt,
		&record.ElapsedSeconds,
		&record.CycleCount,
		&record.FinalScore,
		&record.BreathSeconds,
		&record.SessionSeconds,
		&completed,
		&record.NotePath,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, err
		}
		return domain.Record{}, fmt.Errorf("scan session: %w", err)
	}
	var err error
	if record.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return domain.Record{}, fmt.Errorf("parse started_at: %w", err)
	}
	if record.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return domain.Record{}, fmt.Errorf("parse ended_at: %w", err)
	}
	record.Completed = completed != 0
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
