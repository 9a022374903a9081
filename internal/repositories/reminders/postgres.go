package reminders

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.ReminderRule, error) {
	query :=
		`SELECT id, chat_id, time, message, days FROM reminders
		 WHERE chat_id = $1
		 ORDER BY time, id
		 `

	return r.list(ctx, query, chatID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.ReminderRule, error) {
	query :=
		`SELECT id, chat_id, time, message, days FROM reminders
		 ORDER BY chat_id, time, id
		 `

	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.ReminderRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ReminderRule
	for rows.Next() {
		rule := &models.ReminderRule{}
		if err := rows.Scan(&rule.ID, &rule.ChatID, &rule.Time, &rule.Message, &rule.Days); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rule *models.ReminderRule) (*models.ReminderRule, error) {
	query :=
		`INSERT INTO reminders (chat_id, time, message, days)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rule.ChatID, rule.Time, rule.Message, rule.Days).Scan(&rule.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rule, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, chatID int64) error {
	query :=
		`DELETE FROM reminders
		 WHERE id = $1 AND chat_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, chatID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
