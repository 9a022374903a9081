package main

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/spf13/cobra"
)

var newRepositoryManager = repomanager.NewPostgresRepositoryManager

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(db *sql.DB) error {
		if err := newRepositoryManager().RunMigrations(cmd.Context(), db); err != nil {
			return fmt.Errorf("migrations error: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	})
}
