package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/app"
	"github.com/spf13/cobra"
)

var tickAt string

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one dispatcher pass and print its report",
	Long: `tick runs the same pass the minute scheduler runs, for the current
minute or for the instant given with --at (RFC3339).`,
	RunE: runTick,
}

func init() {
	tickCmd.Flags().StringVar(&tickAt, "at", "", "instant to tick for, RFC3339 (default: now)")
}

func tickTime(at string, now time.Time) (time.Time, error) {
	if at == "" {
		return now.Truncate(time.Minute), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad --at value: %w", err)
	}
	return t, nil
}

func runTick(cmd *cobra.Command, args []string) error {
	at, err := tickTime(tickAt, time.Now())
	if err != nil {
		return err
	}

	return withDB(cmd.Context(), func(db *sql.DB) error {
		svc := app.NewServices(db, cfg, stderrLogger())
		report, err := svc.Dispatcher.Tick(cmd.Context(), at)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return encErr
		}
		return err
	})
}
