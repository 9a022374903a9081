package cycles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns common.ErrorNotFound when the subject has no cycle yet.
func (r *PostgresRepository) Get(ctx context.Context, chatID int64) (*models.CycleConfig, error) {
	query :=
		`SELECT chat_id, cycle_start, morning_time, evening_time, coffee_target, nicotine_target, paused
		 FROM cycle_configs
		 WHERE chat_id = $1
		 `

	cfg := &models.CycleConfig{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&cfg.ChatID, &cfg.CycleStart, &cfg.MorningTime, &cfg.EveningTime,
		&cfg.CoffeeTarget, &cfg.NicotineTarget, &cfg.Paused)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	cfg.CycleStart = timex.DateOf(cfg.CycleStart)
	return cfg, nil
}

// Put inserts or fully replaces the configuration of cfg.ChatID.
func (r *PostgresRepository) Put(ctx context.Context, cfg *models.CycleConfig) error {
	query :=
		`INSERT INTO cycle_configs (chat_id, cycle_start, morning_time, evening_time, coffee_target, nicotine_target, paused, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (chat_id) DO UPDATE SET
		   cycle_start = EXCLUDED.cycle_start,
		   morning_time = EXCLUDED.morning_time,
		   evening_time = EXCLUDED.evening_time,
		   coffee_target = EXCLUDED.coffee_target,
		   nicotine_target = EXCLUDED.nicotine_target,
		   paused = EXCLUDED.paused,
		   updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query,
		cfg.ChatID, timex.DateOf(cfg.CycleStart), cfg.MorningTime, cfg.EveningTime,
		cfg.CoffeeTarget, cfg.NicotineTarget, cfg.Paused)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
