package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/db/models"
)

func (d *Database) CreateAccount(ctx context.Context, username, passwordHash string, privileged bool) (int64, error) {
	res, err := d.db.ExecContext(writeCtx(ctx),
		"INSERT INTO accounts (username, password_hash, is_privileged, created_at) VALUES (?, ?, ?, ?)",
		username, passwordHash, privileged, d.now(),
	)
	if err != nil {
		return 0, storeErr("ACCOUNT_INSERT_FAILED", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("ACCOUNT_INSERT_FAILED", err)
	}
	return id, nil
}

func (d *Database) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	a := &models.Account{}
	err := d.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, is_privileged, created_at FROM accounts WHERE username = ?",
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsPrivileged, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.In("db").Code("ACCOUNT_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("ACCOUNT_SELECT_FAILED", err)
	}
	return a, nil
}

// ListAccounts returns all accounts ordered by id
func (d *Database) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, username, is_privileged, created_at FROM accounts ORDER BY id ASC")
	if err != nil {
		return nil, storeErr("ACCOUNT_LIST_FAILED", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.IsPrivileged, &a.CreatedAt); err != nil {
			return nil, storeErr("ACCOUNT_LIST_FAILED", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("ACCOUNT_LIST_FAILED", err)
	}
	return accounts, nil
}

func (d *Database) CountPrivileged(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE is_privileged = 1").Scan(&count); err != nil {
		return 0, storeErr("ACCOUNT_COUNT_FAILED", err)
	}
	return count, nil
}
