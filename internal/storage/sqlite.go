package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore wraps the SQLite connection.
type SQLiteStore struct {
	sqlStore
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; transactions queue on the pool instead of failing with SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &SQLiteStore{sqlStore{conn: conn, now: time.Now}}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// DatabaseType returns the database backend name.
func (db *SQLiteStore) DatabaseType() string {
	return "SQLite"
}

func (db *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		value TEXT NOT NULL UNIQUE,
		is_alive INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		last_used_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS monitor_targets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		note_url TEXT NOT NULL,
		last_comment_count INTEGER NOT NULL DEFAULT 0,
		last_checked_at DATETIME,
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, note_url)
	);
	CREATE TABLE IF NOT EXISTS monitor_comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id TEXT NOT NULL UNIQUE,
		parent_comment_id TEXT NOT NULL DEFAULT '',
		keyword TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL,
		note_id TEXT NOT NULL,
		title TEXT,
		note_author TEXT,
		note_likes INTEGER,
		note_collects INTEGER,
		note_comments INTEGER,
		note_url TEXT,
		note_time DATETIME,
		note_location TEXT,
		note_type TEXT,
		note_content TEXT,
		comment_author TEXT,
		comment_content TEXT,
		comment_likes INTEGER,
		comment_location TEXT,
		comment_time DATETIME,
		collected_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_monitor_comments_note ON monitor_comments(note_id);
	CREATE INDEX IF NOT EXISTS idx_monitor_targets_user ON monitor_targets(user_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Databases created before last_used_at existed get the column added in place.
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = 'last_used_at'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect sessions table: %w", err)
	}
	if n == 0 {
		if _, err := db.conn.Exec(`ALTER TABLE sessions ADD COLUMN last_used_at DATETIME`); err != nil {
			return fmt.Errorf("add sessions.last_used_at: %w", err)
		}
	}
	return nil
}
