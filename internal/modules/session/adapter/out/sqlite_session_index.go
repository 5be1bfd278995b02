package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"algotimer/internal/modules/session/domain"

	_ "modernc.org/sqlite"
)

// SQLiteSessionIndex is a query projection over the session log. It can be
// dropped and rebuilt at any time.
type SQLiteSessionIndex struct {
	db *sql.DB
}

func NewSQLiteSessionIndex(dbPath string) (*SQLiteSessionIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	index := &SQLiteSessionIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteSessionIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionIndex) ensureSchema(ctx context.Context) error {
	const sessionsDDL = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  problem TEXT NOT NULL,
  started_at TEXT NOT NULL,
  total_seconds INTEGER NOT NULL,
  thought_source TEXT NOT NULL,
  answer_source TEXT NOT NULL
);
`
	const durationsDDL = `
CREATE TABLE IF NOT EXISTS stage_durations (
  session_id TEXT NOT NULL,
  stage INTEGER NOT NULL,
  label TEXT NOT NULL,
  seconds INTEGER NOT NULL,
  has_text INTEGER NOT NULL,
  PRIMARY KEY (session_id, stage)
);
`
	if _, err := s.db.ExecContext(ctx, sessionsDDL); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, durationsDDL); err != nil {
		return fmt.Errorf("create stage_durations table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Reset(ctx context.Context) error {
	for _, table := range []string{"stage_durations", "sessions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteSessionIndex) Upsert(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	const upsertSession = `
INSERT INTO sessions (id, problem, started_at, total_seconds, thought_source, answer_source)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  problem=excluded.problem,
  started_at=excluded.started_at,
  total_seconds=excluded.total_seconds,
  thought_source=excluded.thought_source,
  answer_source=excluded.answer_source;
`
	_, err = tx.ExecContext(ctx, upsertSession,
		session.ID,
		session.Problem,
		session.StartedAt.Format(time.RFC3339),
		session.TotalSeconds(),
		string(session.SourceOf(domain.StageThinking)),
		string(session.SourceOf(domain.StageCoding)),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stage_durations WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear stage durations: %w", err)
	}
	for _, r := range session.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stage_durations (session_id, stage, label, seconds, has_text) VALUES (?, ?, ?, ?, ?)`,
			session.ID, int(r.Stage), r.Stage.String(), r.Seconds, r.TextOrEmpty() != "",
		)
		if err != nil {
			return fmt.Errorf("insert stage duration: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{AverageSeconds: map[domain.StageID]float64{}}
	const totals = `
SELECT
  COUNT(*),
  COALESCE(SUM(total_seconds), 0),
  COALESCE(SUM(CASE WHEN thought_source = 'self' AND EXISTS (
    SELECT 1 FROM stage_durations d WHERE d.session_id = s.id AND d.stage = ?) THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN answer_source = 'self' AND EXISTS (
    SELECT 1 FROM stage_durations d WHERE d.session_id = s.id AND d.stage = ?) THEN 1 ELSE 0 END), 0)
FROM sessions s
`
	row := s.db.QueryRowContext(ctx, totals, int(domain.StageThinking), int(domain.StageCoding))
	if err := row.Scan(&stats.Sessions, &stats.TotalSeconds, &stats.SelfThoughts, &stats.SelfAnswers); err != nil {
		return domain.Stats{}, fmt.Errorf("query session totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT stage, AVG(seconds) FROM stage_durations GROUP BY stage ORDER BY stage`)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query stage averages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stage int
		var avg float64
		if err := rows.Scan(&stage, &avg); err != nil {
			return domain.Stats{}, fmt.Errorf("scan stage average: %w", err)
		}
		stats.AverageSeconds[domain.StageID(stage)] = avg
	}
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("read stage averages: %w", err)
	}
	return stats, nil
}
