package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB holding the conversion history schema.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "running migrations")
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory database")
	}
	// Every pooled connection would otherwise see its own empty database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "running migrations")
	}

	return d, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS conversion_history (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    session_id TEXT NOT NULL DEFAULT '',
    page TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('info','conversion')),
    from_name TEXT NOT NULL DEFAULT '',
    from_id TEXT NOT NULL DEFAULT '',
    to_name TEXT NOT NULL DEFAULT '',
    to_id TEXT NOT NULL DEFAULT '',
    value TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL CHECK(outcome IN ('ok','unmapped','invalid_number','failed','cancelled')),
    result TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_history_timestamp ON conversion_history(timestamp);
CREATE INDEX IF NOT EXISTS idx_history_page ON conversion_history(page);
CREATE INDEX IF NOT EXISTS idx_history_session ON conversion_history(session_id);
CREATE INDEX IF NOT EXISTS idx_history_outcome ON conversion_history(outcome);
`
