package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/db/models"
)

// HistoryLimit caps how many entries ListHistory returns.
const HistoryLimit = 50

const historyColumns = `id, account_id, content_id, media_kind, title, poster_ref, season, episode,
	episode_title, progress_seconds, completed, watched_at`

// RecordEvent inserts the entry for ev's key, or only refreshes watched_at
// when it already exists. Title, poster and episode title keep their first values.
func (d *Database) RecordEvent(ctx context.Context, ev models.WatchEvent) error {
	_, err := d.db.ExecContext(writeCtx(ctx), `
		INSERT INTO watch_history
			(account_id, content_id, media_kind, title, poster_ref, season, episode, episode_title, watched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, content_id, media_kind, season, episode)
		DO UPDATE SET watched_at = excluded.watched_at`,
		ev.AccountID, ev.ContentID, ev.MediaKind, ev.Title, nullString(ev.PosterRef),
		ev.Season, ev.Episode, nullString(ev.EpisodeTitle), d.now(),
	)
	if err != nil {
		return storeErr("HISTORY_UPSERT_FAILED", err)
	}
	return nil
}

// UpdateProgress overwrites progress, completion and watched_at of an
// existing entry. A missing entry is left alone.
func (d *Database) UpdateProgress(ctx context.Context, key models.HistoryKey, progressSeconds int64, completed bool) error {
	_, err := d.db.ExecContext(writeCtx(ctx), `
		UPDATE watch_history
		SET progress_seconds = ?, completed = ?, watched_at = ?
		WHERE account_id = ? AND content_id = ? AND media_kind = ? AND season = ? AND episode = ?`,
		progressSeconds, completed, d.now(),
		key.AccountID, key.ContentID, key.MediaKind, key.Season, key.Episode,
	)
	if err != nil {
		return storeErr("HISTORY_UPDATE_FAILED", err)
	}
	return nil
}

// ListHistory returns the account's most recently watched entries first.
func (d *Database) ListHistory(ctx context.Context, accountID int64) ([]models.WatchHistoryEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM watch_history
		WHERE account_id = ?
		ORDER BY watched_at DESC, id DESC
		LIMIT ?`,
		accountID, HistoryLimit,
	)
	if err != nil {
		return nil, storeErr("HISTORY_LIST_FAILED", err)
	}
	defer rows.Close()

	entries := []models.WatchHistoryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storeErr("HISTORY_LIST_FAILED", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("HISTORY_LIST_FAILED", err)
	}
	return entries, nil
}

func (d *Database) GetProgress(ctx context.Context, key models.HistoryKey) (*models.WatchHistoryEntry, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM watch_history
		WHERE account_id = ? AND content_id = ? AND media_kind = ? AND season = ? AND episode = ?`,
		key.AccountID, key.ContentID, key.MediaKind, key.Season, key.Episode,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.In("db").Code("HISTORY_NOT_FOUND").With("content_id", key.ContentID).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("HISTORY_SELECT_FAILED", err)
	}
	return e, nil
}

// RemoveHistoryEntry deletes one entry, only if it belongs to accountID.
func (d *Database) RemoveHistoryEntry(ctx context.Context, accountID, entryID int64) error {
	_, err := d.db.ExecContext(writeCtx(ctx), "DELETE FROM watch_history WHERE id = ? AND account_id = ?", entryID, accountID)
	if err != nil {
		return storeErr("HISTORY_DELETE_FAILED", err)
	}
	return nil
}

func (d *Database) ClearHistory(ctx context.Context, accountID int64) error {
	_, err := d.db.ExecContext(writeCtx(ctx), "DELETE FROM watch_history WHERE account_id = ?", accountID)
	if err != nil {
		return storeErr("HISTORY_CLEAR_FAILED", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.WatchHistoryEntry, error) {
	var e models.WatchHistoryEntry
	var poster, episodeTitle sql.NullString
	err := s.Scan(&e.ID, &e.AccountID, &e.ContentID, &e.MediaKind, &e.Title, &poster,
		&e.Season, &e.Episode, &episodeTitle, &e.ProgressSeconds, &e.Completed, &e.WatchedAt)
	if err != nil {
		return nil, err
	}
	e.PosterRef = poster.String
	e.EpisodeTitle = episodeTitle.String
	return &e, nil
}
