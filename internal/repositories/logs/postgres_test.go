package logs

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"chat_id", "log_date", "phase", "units", "note", "logged_at"}

const (
	getQ    = `(?s)^SELECT\s+chat_id,\s*log_date,.*FROM\s+daily_logs\s+WHERE\s+chat_id\s*=\s*\$1\s+AND\s+log_date\s*=\s*\$2\s*$`
	putQ    = `(?s)^INSERT\s+INTO\s+daily_logs\s*\(chat_id,\s*log_date,\s*phase,\s*units,\s*note,\s*logged_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*ON\s+CONFLICT\s*\(chat_id,\s*log_date\)\s*DO\s+UPDATE.*$`
	recentQ = `(?s)^SELECT.*FROM\s+daily_logs\s+WHERE\s+chat_id\s*=\s*\$1\s+ORDER\s+BY\s+log_date\s+DESC\s+LIMIT\s+\$2\s*$`
	allQ    = `(?s)^SELECT.*FROM\s+daily_logs\s+WHERE\s+chat_id\s*=\s*\$1\s+AND\s+units\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+log_date\s+ASC\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestGet_WithData(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 10, 19, 21, 5, 0, 0, time.UTC)
	rows := sqlmock.NewRows(cols).AddRow(int64(1), day(19), "COFFEE", int64(2), "felt good", at)
	mock.ExpectQuery(getQ).WithArgs(int64(1), day(19)).WillReturnRows(rows)

	got, err := repo.Get(context.Background(), 1, day(19).Add(21*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCoffee, got.Phase)
	require.NotNil(t, got.Units)
	assert.Equal(t, 2, *got.Units)
	require.NotNil(t, got.Note)
	assert.Equal(t, "felt good", *got.Note)
	require.NotNil(t, got.LoggedAt)
	assert.True(t, got.HasData())
}

func TestGet_ClosedOutDay(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(cols).AddRow(int64(1), day(19), "NICOTINE", nil, "auto", nil)
	mock.ExpectQuery(getQ).WithArgs(int64(1), day(19)).WillReturnRows(rows)

	got, err := repo.Get(context.Background(), 1, day(19))
	require.NoError(t, err)
	assert.Nil(t, got.Units)
	assert.Nil(t, got.LoggedAt)
	assert.False(t, got.HasData())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).WithArgs(int64(1), day(19)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 1, day(19))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPut_NullUnits(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	note := "auto"
	mock.ExpectExec(putQ).
		WithArgs(int64(1), day(19), "COFFEE", sql.NullInt64{}, sql.NullString{String: "auto", Valid: true}, sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Put(context.Background(), &models.LogEntry{ChatID: 1, Date: day(19), Phase: models.PhaseCoffee, Note: &note})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(putQ).WillReturnError(errors.New("db down"))

	units := 3
	err := repo.Put(context.Background(), &models.LogEntry{ChatID: 1, Date: day(19), Phase: models.PhaseCoffee, Units: &units})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestListRecent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(cols).
		AddRow(int64(1), day(19), "NICOTINE", int64(4), nil, day(19)).
		AddRow(int64(1), day(18), "NICOTINE", nil, "auto", nil).
		AddRow(int64(1), day(17), "COFFEE", int64(1), nil, day(17))
	mock.ExpectQuery(recentQ).WithArgs(int64(1), 3).WillReturnRows(rows)

	got, err := repo.ListRecent(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, day(19), got[0].Date)
	assert.False(t, got[1].HasData())
	assert.Equal(t, models.PhaseCoffee, got[2].Phase)
}

func TestListAll_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(cols).
		AddRow(int64(1), day(17), "COFFEE", int64(1), nil, day(17)).
		RowError(0, errors.New("broken row"))
	mock.ExpectQuery(allQ).WithArgs(int64(1)).WillReturnRows(rows)

	_, err := repo.ListAll(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestListAll_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(allQ).WithArgs(int64(1)).WillReturnError(errors.New("db down"))

	_, err := repo.ListAll(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
