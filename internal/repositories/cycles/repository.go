// Package cycles stores the per-subject cycle configuration.
package cycles

import (
	"context"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type Repository interface {
	Get(ctx context.Context, chatID int64) (*models.CycleConfig, error)
	Put(ctx context.Context, cfg *models.CycleConfig) error
}
