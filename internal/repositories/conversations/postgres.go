package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, chatID int64) (models.ConversationState, error) {
	query :=
		`SELECT state, temp_time, temp_message FROM conversations
		 WHERE chat_id = $1
		 `

	st := models.ConversationState{ChatID: chatID}
	var state string
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(&state, &st.TempTime, &st.TempMessage)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ConversationState{ChatID: chatID}, nil
		}
		return models.ConversationState{}, fmt.Errorf("db error: %w", err)
	}

	st.State = models.State(state)
	return st, nil
}

func (r *PostgresRepository) Put(ctx context.Context, state models.ConversationState) error {
	query :=
		`INSERT INTO conversations (chat_id, state, temp_time, temp_message)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (chat_id) DO UPDATE SET
		   state = EXCLUDED.state,
		   temp_time = EXCLUDED.temp_time,
		   temp_message = EXCLUDED.temp_message
		 `

	_, err := r.db.ExecContext(ctx, query,
		state.ChatID, string(state.State), state.TempTime, state.TempMessage)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
