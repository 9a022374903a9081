// Package logs stores the daily consumption log, one row per subject and
// calendar date.
package logs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type Repository interface {
	Get(ctx context.Context, chatID int64, date time.Time) (*models.LogEntry, error)
	Put(ctx context.Context, entry *models.LogEntry) error
	// ListRecent returns up to limit entries, newest first, including
	// closed-out days without data.
	ListRecent(ctx context.Context, chatID int64, limit int) ([]*models.LogEntry, error)
	// ListAll returns every entry with data, oldest first.
	ListAll(ctx context.Context, chatID int64) ([]*models.LogEntry, error)
}
