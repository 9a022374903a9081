package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/conversations"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/cycles"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/logs"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/reminders"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Cycles(db dbx.DBTX) cycles.Repository
	Logs(db dbx.DBTX) logs.Repository
	Reminders(db dbx.DBTX) reminders.Repository
	Conversations(db dbx.DBTX) conversations.Repository
}
