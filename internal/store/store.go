// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/stroop/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout stores instants as fixed-width UTC text so that string order
// in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			palette TEXT NOT NULL,
			trial_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			presented_word TEXT NOT NULL,
			presented_ink TEXT NOT NULL,
			selected TEXT NOT NULL,
			reaction_time REAL NOT NULL,
			is_right INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Export stores the session; it lets the store act as a session exporter.
func (s *Store) Export(ctx context.Context, session model.Session) error {
	if len(session.Trials) == 0 {
		return nil
	}
	if err := s.InsertSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session history: %w", err)
	}
	return nil
}

// InsertSession stores a completed session and its trials.
func (s *Store) InsertSession(ctx context.Context, session model.Session) (err error) {
	if session.ID == "" {
		return errors.New("session id is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	palette := make([]string, len(session.Palette))
	for i, c := range session.Palette {
		palette[i] = string(c)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, palette, trial_count) VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		formatTime(session.StartedAt),
		formatTime(session.EndedAt),
		strings.Join(palette, ","),
		len(session.Trials),
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trials (session_id, seq, presented_word, presented_ink, selected, reaction_time, is_right)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, t := range session.Trials {
		if _, err = stmt.ExecContext(ctx, session.ID, i, string(t.PresentedWord), string(t.PresentedInk), string(t.Selected), t.ReactionTimeSeconds, t.IsCorrect); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListSessions returns per-session congruence aggregates ordered by end time.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT s.id, s.ended_at,
			SUM(CASE WHEN t.presented_word = t.presented_ink THEN 1 ELSE 0 END),
			SUM(CASE WHEN t.presented_word = t.presented_ink AND t.is_right = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN t.presented_word = t.presented_ink THEN t.reaction_time ELSE 0.0 END),
			SUM(CASE WHEN t.presented_word <> t.presented_ink THEN 1 ELSE 0 END),
			SUM(CASE WHEN t.presented_word <> t.presented_ink AND t.is_right = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN t.presented_word <> t.presented_ink THEN t.reaction_time ELSE 0.0 END)
		FROM sessions s
		JOIN trials t ON t.session_id = s.id
		WHERE %s
		GROUP BY s.id, s.ended_at
		ORDER BY s.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt,
			&agg.CongruentCount, &agg.CongruentCorrect, &agg.CongruentRTSum,
			&agg.IncongruentCount, &agg.IncongruentCorrect, &agg.IncongruentRTSum,
		); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListTrials returns a stored session's trials in presentation order.
func (s *Store) ListTrials(ctx context.Context, sessionID string) ([]model.TrialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT presented_word, presented_ink, selected, reaction_time, is_right
		 FROM trials WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var trials []model.TrialRecord
	for rows.Next() {
		var word, ink, selected string
		var rec model.TrialRecord
		if err := rows.Scan(&word, &ink, &selected, &rec.ReactionTimeSeconds, &rec.IsCorrect); err != nil {
			return nil, err
		}
		rec.PresentedWord = model.Color(word)
		rec.PresentedInk = model.Color(ink)
		rec.Selected = model.Color(selected)
		trials = append(trials, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trials, nil
}

// LatestSessionID returns the most recently ended session.
func (s *Store) LatestSessionID(ctx context.Context) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM sessions ORDER BY ended_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
