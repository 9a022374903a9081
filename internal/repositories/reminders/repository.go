// Package reminders stores the generic day-of-week reminder rules.
package reminders

import (
	"context"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type Repository interface {
	// ListByChat returns the subject's rules ordered by time of day.
	ListByChat(ctx context.Context, chatID int64) ([]*models.ReminderRule, error)
	// ListAll returns the rules of every subject.
	ListAll(ctx context.Context) ([]*models.ReminderRule, error)
	Create(ctx context.Context, rule *models.ReminderRule) (*models.ReminderRule, error)
	// Delete removes the rule only if it belongs to chatID and returns
	// common.ErrorNotFound otherwise.
	Delete(ctx context.Context, id, chatID int64) error
}
