package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/db/models"
)

func (d *Database) CreateSession(ctx context.Context, rec *models.SessionRecord) error {
	now := d.now()
	res, err := d.db.ExecContext(writeCtx(ctx), `
		INSERT INTO sessions (session_identifier, account_id, username, is_privileged, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.AccountID, rec.Username, rec.IsPrivileged, rec.ExpiresAt, now,
	)
	if err != nil {
		return storeErr("SESSION_INSERT_FAILED", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	rec.CreatedAt = now
	return nil
}

func (d *Database) GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	rec := &models.SessionRecord{}
	err := d.db.QueryRowContext(ctx, `
		SELECT id, session_identifier, account_id, username, is_privileged, expires_at, created_at
		FROM sessions WHERE session_identifier = ?`,
		sessionID,
	).Scan(&rec.ID, &rec.SessionID, &rec.AccountID, &rec.Username, &rec.IsPrivileged, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.In("db").Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("SESSION_SELECT_FAILED", err)
	}
	return rec, nil
}

func (d *Database) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := d.db.ExecContext(writeCtx(ctx), "DELETE FROM sessions WHERE session_identifier = ?", sessionID); err != nil {
		return storeErr("SESSION_DELETE_FAILED", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions with expires_at before now (unix seconds).
func (d *Database) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	res, err := d.db.ExecContext(writeCtx(ctx), "DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, storeErr("SESSION_PURGE_FAILED", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("SESSION_PURGE_FAILED", err)
	}
	return n, nil
}
