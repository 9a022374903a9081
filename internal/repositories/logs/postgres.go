package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

const columns = `chat_id, log_date, phase, units, note, logged_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.LogEntry, error) {
	var (
		e        models.LogEntry
		phase    string
		units    sql.NullInt64
		note     sql.NullString
		loggedAt sql.NullTime
	)
	if err := s.Scan(&e.ChatID, &e.Date, &phase, &units, &note, &loggedAt); err != nil {
		return nil, err
	}

	e.Date = timex.DateOf(e.Date)
	e.Phase = models.Phase(phase)
	if units.Valid {
		u := int(units.Int64)
		e.Units = &u
	}
	if note.Valid {
		n := note.String
		e.Note = &n
	}
	if loggedAt.Valid {
		t := loggedAt.Time
		e.LoggedAt = &t
	}
	return &e, nil
}

// Get returns common.ErrorNotFound when there is no row for that date.
func (r *PostgresRepository) Get(ctx context.Context, chatID int64, date time.Time) (*models.LogEntry, error) {
	query := `SELECT ` + columns + ` FROM daily_logs
		 WHERE chat_id = $1 AND log_date = $2
		 `

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, chatID, timex.DateOf(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

// Put inserts the entry or overwrites the existing one for the same date.
func (r *PostgresRepository) Put(ctx context.Context, entry *models.LogEntry) error {
	query :=
		`INSERT INTO daily_logs (chat_id, log_date, phase, units, note, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (chat_id, log_date) DO UPDATE SET
		   phase = EXCLUDED.phase,
		   units = EXCLUDED.units,
		   note = EXCLUDED.note,
		   logged_at = EXCLUDED.logged_at
		 `

	var (
		units    sql.NullInt64
		note     sql.NullString
		loggedAt sql.NullTime
	)
	if entry.Units != nil {
		units = sql.NullInt64{Int64: int64(*entry.Units), Valid: true}
	}
	if entry.Note != nil {
		note = sql.NullString{String: *entry.Note, Valid: true}
	}
	if entry.LoggedAt != nil {
		loggedAt = sql.NullTime{Time: *entry.LoggedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ChatID, timex.DateOf(entry.Date), string(entry.Phase), units, note, loggedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, chatID int64, limit int) ([]*models.LogEntry, error) {
	query := `SELECT ` + columns + ` FROM daily_logs
		 WHERE chat_id = $1
		 ORDER BY log_date DESC
		 LIMIT $2
		 `

	return r.list(ctx, query, chatID, limit)
}

func (r *PostgresRepository) ListAll(ctx context.Context, chatID int64) ([]*models.LogEntry, error) {
	query := `SELECT ` + columns + ` FROM daily_logs
		 WHERE chat_id = $1 AND units IS NOT NULL
		 ORDER BY log_date ASC
		 `

	return r.list(ctx, query, chatID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
