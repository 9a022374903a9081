// Package conversations stores the dialog state of each subject.
package conversations

import (
	"context"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type Repository interface {
	// Get returns the none state when nothing is stored for chatID.
	Get(ctx context.Context, chatID int64) (models.ConversationState, error)
	// Put overwrites the whole record.
	Put(ctx context.Context, state models.ConversationState) error
}
