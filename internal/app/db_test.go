package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubOpen(t *testing.T, pingErr error) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exp := mock.ExpectPing()
	if pingErr != nil {
		exp.WillReturnError(pingErr)
		mock.ExpectClose()
	}

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
	return mock
}

func TestOpenDB_OK(t *testing.T) {
	mock := stubOpen(t, nil)

	db, err := OpenDB(context.Background(), "postgres://x")
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenDB_PingError(t *testing.T) {
	mock := stubOpen(t, errors.New("connection refused"))

	_, err := OpenDB(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenDB_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("unknown driver") }
	t.Cleanup(func() { sqlOpen = orig })

	_, err := OpenDB(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error")
}

func TestNewApp_RefusesPlaceholderSecret(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) {
		t.Fatal("database opened before config was validated")
		return nil, nil
	}
	t.Cleanup(func() { sqlOpen = orig })

	var c config.Config
	c.LoadDefaults()

	_, err := NewApp(context.Background(), &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "config error")
}
