package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/db/models"
)

var errDriver = errors.New("driver: connection reset")

func newMockDB(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return New(sqlDB), mock
}

func TestStoreFailuresArePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	key := models.HistoryKey{AccountID: 1, ContentID: 2, MediaKind: models.KindMovie, Season: -1, Episode: -1}

	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		call   func(*Database) error
	}{
		{
			name:   "record event",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("INSERT INTO watch_history").WillReturnError(errDriver) },
			call:   func(d *Database) error { return d.RecordEvent(ctx, models.WatchEvent{AccountID: 1}) },
		},
		{
			name:   "update progress",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("UPDATE watch_history").WillReturnError(errDriver) },
			call:   func(d *Database) error { return d.UpdateProgress(ctx, key, 10, false) },
		},
		{
			name:   "list history",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT (.+) FROM watch_history").WillReturnError(errDriver) },
			call: func(d *Database) error {
				_, err := d.ListHistory(ctx, 1)
				return err
			},
		},
		{
			name:   "get progress",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT (.+) FROM watch_history").WillReturnError(errDriver) },
			call: func(d *Database) error {
				_, err := d.GetProgress(ctx, key)
				return err
			},
		},
		{
			name:   "clear history",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("DELETE FROM watch_history").WillReturnError(errDriver) },
			call:   func(d *Database) error { return d.ClearHistory(ctx, 1) },
		},
		{
			name:   "get session",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("FROM sessions").WillReturnError(errDriver) },
			call: func(d *Database) error {
				_, err := d.GetSession(ctx, "sid")
				return err
			},
		},
		{
			name:   "delete session",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("DELETE FROM sessions").WillReturnError(errDriver) },
			call:   func(d *Database) error { return d.DeleteSession(ctx, "sid") },
		},
		{
			name:   "account lookup",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("FROM accounts").WillReturnError(errDriver) },
			call: func(d *Database) error {
				_, err := d.GetAccountByUsername(ctx, "alice")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDB(t)
			tt.expect(mock)

			err := tt.call(d)
			require.ErrorIs(t, err, auth.ErrPersistence)
			require.ErrorIs(t, err, errDriver)
			assert.NotErrorIs(t, err, auth.ErrNotFound)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestValidateSurfacesStoreFailure(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectQuery("FROM sessions").WillReturnError(errDriver)

	ledger, err := auth.NewSessionLedger(d, []byte("secret"))
	require.NoError(t, err)

	id, err := ledger.Validate(context.Background(), "sid.abcdef")
	require.ErrorIs(t, err, auth.ErrPersistence)
	assert.Nil(t, id)
}

func TestPingFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	mock.ExpectPing().WillReturnError(errDriver)

	err = New(sqlDB).Ping(context.Background())
	require.ErrorIs(t, err, auth.ErrPersistence)
}
