// Package history keeps a local journal of export runs in SQLite. The
// journal is advisory: commands record into it best-effort and never fail
// an export over a journal error.
package history

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// Open opens or creates the journal database at the given path.
// It sets pragmas for WAL mode, foreign key enforcement, and busy timeout.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// SQLite is single-writer; limit the pool to one connection to avoid
	// lock contention and make the single-connection intent explicit.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}

// schemaDDL contains the CREATE TABLE statements for the initial schema.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS export_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_key  TEXT NOT NULL,
	format     TEXT NOT NULL,
	out_path   TEXT NOT NULL DEFAULT '',
	bytes      INTEGER NOT NULL DEFAULT 0,
	ok         INTEGER NOT NULL DEFAULT 1,
	error      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_export_runs_issue_key ON export_runs(issue_key);
CREATE INDEX IF NOT EXISTS idx_export_runs_created_at ON export_runs(created_at);
`

// Initialize creates all tables if they don't exist and sets the schema version.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion reads the schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	version, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", value, err)
	}
	return version, nil
}

// migrations maps a target version to the function that upgrades from the
// previous version. Empty until the journal schema grows past v1.
var migrations = map[int]func(*sql.Tx) error{}

// Migrate checks the current schema version and applies any pending migrations
// sequentially. It is a no-op when already at the latest version.
func Migrate(db *sql.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		migrateFn, ok := migrations[v]
		if !ok {
			return fmt.Errorf("missing migration for version %d", v)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d transaction: %w", v, err)
		}

		if err := migrateFn(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", v, err)
		}

		if _, err := tx.Exec(
			`UPDATE meta SET value = ? WHERE key = 'schema_version'`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", v, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", v, err)
		}
	}

	return nil
}

// Run is one journal entry: a single issue exported in a single format.
type Run struct {
	ID        int    `json:"id"`
	IssueKey  string `json:"issue_key"`
	Format    string `json:"format"`
	OutPath   string `json:"out_path,omitempty"` // empty for failed runs
	Bytes     int    `json:"bytes"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RecordRun inserts a journal entry and returns its ID. The timestamp is
// assigned here, not by the caller.
func RecordRun(db *sql.DB, run *Run) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	ok := 0
	if run.OK {
		ok = 1
	}

	res, err := db.Exec(
		`INSERT INTO export_runs (issue_key, format, out_path, bytes, ok, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.IssueKey, run.Format, run.OutPath, run.Bytes, ok, run.Error, now,
	)
	if err != nil {
		return 0, fmt.Errorf("recording export run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	run.ID = int(id)
	run.CreatedAt = now
	return run.ID, nil
}

// ListRuns returns journal entries newest-first. A non-positive limit
// returns everything.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	query := `SELECT id, issue_key, format, out_path, bytes, ok, error, created_at
		 FROM export_runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing export runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var ok int
		if err := rows.Scan(
			&run.ID, &run.IssueKey, &run.Format, &run.OutPath,
			&run.Bytes, &ok, &run.Error, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning export run: %w", err)
		}
		run.OK = ok == 1
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export runs: %w", err)
	}

	return runs, nil
}

// CountRuns returns the total number of journal entries.
func CountRuns(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM export_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting export runs: %w", err)
	}
	return count, nil
}
