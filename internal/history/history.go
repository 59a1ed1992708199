// Package history keeps a local log of projection runs in SQLite so
// past runs can be reviewed per session note.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/lineagekit/lineage/internal/project"
)

// Run is one recorded projection run.
type Run struct {
	ID                   string    `json:"id"`
	SessionPath          string    `json:"session_path"`
	StartedAt            time.Time `json:"started_at"`
	PersonsCreated       int       `json:"persons_created"`
	PersonsUpdated       int       `json:"persons_updated"`
	EventsCreated        int       `json:"events_created"`
	RelationshipsCreated int       `json:"relationships_created"`
	PlacesCreated        int       `json:"places_created"`
	Errors               []string  `json:"errors"`
	Notes                []string  `json:"notes"`
	Files                []File    `json:"files,omitempty"`
}

// File is one file a run touched.
type File struct {
	Path   string `json:"path"`
	Action string `json:"action"` // created or updated
}

// Stats summarizes the whole run log.
type Stats struct {
	Runs           int    `json:"runs"`
	Sessions       int    `json:"sessions"`
	FilesTouched   int    `json:"files_touched"`
	LastRunAt      string `json:"last_run_at,omitempty"`
	RunsWithErrors int    `json:"runs_with_errors"`
}

// Log records projection runs in a SQLite database.
type Log struct {
	db      *sql.DB
	entropy *rand.Rand
}

// Open opens or creates the run log at the given path.
func Open(dbPath string) (*Log, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	l := &Log{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()
}

func (l *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id                    TEXT PRIMARY KEY,
		session_path          TEXT NOT NULL,
		started_at            TEXT NOT NULL,
		persons_created       INTEGER NOT NULL DEFAULT 0,
		persons_updated       INTEGER NOT NULL DEFAULT 0,
		events_created        INTEGER NOT NULL DEFAULT 0,
		relationships_created INTEGER NOT NULL DEFAULT 0,
		places_created        INTEGER NOT NULL DEFAULT 0,
		errors                TEXT,
		notes                 TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_path);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id TEXT NOT NULL REFERENCES runs(id),
		path   TEXT NOT NULL,
		action TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record stores one run and returns its id.
func (l *Log) Record(ctx context.Context, sessionPath string, sum *project.Summary) (string, error) {
	id := l.newID()
	now := time.Now().UTC().Format(time.RFC3339)

	errorsJSON, err := json.Marshal(sum.Errors)
	if err != nil {
		return "", fmt.Errorf("marshal errors: %w", err)
	}
	notesJSON, err := json.Marshal(sum.Notes)
	if err != nil {
		return "", fmt.Errorf("marshal notes: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, session_path, started_at, persons_created, persons_updated,
			events_created, relationships_created, places_created, errors, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sessionPath, now, sum.PersonsCreated, sum.PersonsUpdated,
		sum.EventsCreated, sum.RelationshipsCreated, sum.PlacesCreated,
		string(errorsJSON), string(notesJSON))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, path := range sum.Created {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, path, action) VALUES (?, ?, 'created')`, id, path); err != nil {
			return "", fmt.Errorf("insert run file: %w", err)
		}
	}
	for _, path := range sum.Updated {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, path, action) VALUES (?, ?, 'updated')`, id, path); err != nil {
			return "", fmt.Errorf("insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. sessionPath filters
// to one session when non-empty; limit <= 0 means 20.
func (l *Log) List(ctx context.Context, sessionPath string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, session_path, started_at, persons_created, persons_updated,
			events_created, relationships_created, places_created, errors, notes
		FROM runs`
	args := []any{}
	if sessionPath != "" {
		query += ` WHERE session_path = ?`
		args = append(args, sessionPath)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var errorsJSON, notesJSON sql.NullString
		if err := rows.Scan(&r.ID, &r.SessionPath, &startedAt, &r.PersonsCreated, &r.PersonsUpdated,
			&r.EventsCreated, &r.RelationshipsCreated, &r.PlacesCreated, &errorsJSON, &notesJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = t
		}
		r.Errors = decodeList(errorsJSON)
		r.Notes = decodeList(notesJSON)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the files one run touched, created before updated.
func (l *Log) Files(ctx context.Context, runID string) ([]File, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT path, action FROM run_files WHERE run_id = ? ORDER BY action, path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Path, &f.Action); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetStats summarizes the run log.
func (l *Log) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT session_path), COALESCE(MAX(started_at), '')
		FROM runs`).Scan(&stats.Runs, &stats.Sessions, &stats.LastRunAt)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}

	if err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_files`).Scan(&stats.FilesTouched); err != nil {
		return nil, fmt.Errorf("file stats: %w", err)
	}

	if err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE errors IS NOT NULL AND errors != '[]'`).Scan(&stats.RunsWithErrors); err != nil {
		return nil, fmt.Errorf("error stats: %w", err)
	}

	return stats, nil
}

func decodeList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil
	}
	return out
}
