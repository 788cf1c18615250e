package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/auth"
)

// DefaultMaxConns bounds the connection pool shared by every request.
const DefaultMaxConns = 5

var _ auth.Store = (*Database)(nil)

type Database struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (creating if needed) the database at path and migrates it.
func NewSQLite(path string, maxConns int) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, oops.Code("DB_OPEN_FAILED").With("path", path).Wrap(err)
	}
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)

	d := New(sqlDB)
	if err := d.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an already opened handle without migrating it.
func New(sqlDB *sql.DB) *Database {
	return &Database{db: sqlDB, now: func() time.Time { return time.Now().UTC() }}
}

func (d *Database) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_privileged BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_identifier TEXT UNIQUE NOT NULL,
		account_id INTEGER NOT NULL,
		username TEXT NOT NULL,
		is_privileged BOOLEAN NOT NULL DEFAULT 0,
		expires_at INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

	CREATE TABLE IF NOT EXISTS watch_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		content_id INTEGER NOT NULL,
		media_kind TEXT NOT NULL,
		title TEXT NOT NULL,
		poster_ref TEXT,
		season INTEGER NOT NULL DEFAULT -1,
		episode INTEGER NOT NULL DEFAULT -1,
		episode_title TEXT,
		progress_seconds INTEGER NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT 0,
		watched_at DATETIME NOT NULL,
		UNIQUE(account_id, content_id, media_kind, season, episode)
	);

	CREATE INDEX IF NOT EXISTS idx_watch_history_recent ON watch_history(account_id, watched_at DESC);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return oops.Code("DB_MIGRATE_FAILED").Wrap(err)
	}
	return nil
}

// Ping checks that a pooled connection can reach the database.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return storeErr("DB_PING_FAILED", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// writeCtx detaches a write from request cancellation so a started
// statement is never abandoned by a disconnecting client.
func writeCtx(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// storeErr tags a driver error as a persistence failure.
func storeErr(code string, err error) error {
	if isUniqueViolation(err) {
		return oops.In("db").Code(code).Wrap(fmt.Errorf("%w: %w", auth.ErrConflict, err))
	}
	return oops.In("db").Code(code).Wrap(fmt.Errorf("%w: %w", auth.ErrPersistence, err))
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
