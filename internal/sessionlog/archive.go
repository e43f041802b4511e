package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"techpanel/internal/types"
)

// Archive is the SQLite index of finished sessions. It backs the history
// listing; the JSON run logs remain the source of truth for turn content.
type Archive struct {
	db *sql.DB
}

// Session is one archived run.
type Session struct {
	ID             string
	Participant    string
	Position       string
	Grade          types.GradeTarget
	StartedAt      time.Time
	Turns          int
	Recommendation string
	LogPath        string
}

// OpenArchive opens (or creates) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	a := &Archive{db: db}
	if err := a.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		participant TEXT NOT NULL,
		position TEXT NOT NULL,
		grade TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		turns INTEGER NOT NULL,
		recommendation TEXT NOT NULL,
		log_path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_participant ON sessions(participant);
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return nil
}

// Record upserts one finished session.
func (a *Archive) Record(ctx context.Context, s Session) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO sessions (id, participant, position, grade, started_at, turns, recommendation, log_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			turns = excluded.turns,
			recommendation = excluded.recommendation,
			log_path = excluded.log_path`,
		s.ID, s.Participant, s.Position, string(s.Grade), s.StartedAt.UTC().Format(time.RFC3339), s.Turns, s.Recommendation, s.LogPath)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// List returns archived sessions, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, participant, position, grade, started_at, turns, recommendation, log_path
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var grade, started string
		if err := rows.Scan(&s.ID, &s.Participant, &s.Position, &grade, &started, &s.Turns, &s.Recommendation, &s.LogPath); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s.Grade = types.GradeTarget(grade)
		if ts, perr := time.Parse(time.RFC3339, started); perr == nil {
			s.StartedAt = ts
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
