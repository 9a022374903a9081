package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cyclekeeper/internal/app"
	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/spf13/cobra"
)

// Seams for tests.
var (
	loadConfig = config.LoadConfig
	openDB     = app.OpenDB
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cyclectl",
	Short: "Admin tool for the coffee/nicotine cycle bot",
	Long: `cyclectl manages a cycle bot deployment. It reads the same .env,
environment, JSON file and short flags as the server (e.g. -d <dsn>).`,
	SilenceUsage: true,
	// Server flags such as -d or -s are read by the config loader.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = loadConfig()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	for _, c := range []*cobra.Command{migrateCmd, tokenCmd, tickCmd, mcpCmd} {
		c.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
		rootCmd.AddCommand(c)
	}
}

// stderrLogger keeps stdout free for command output and the MCP protocol.
func stderrLogger() logging.Logger {
	return logging.NewJSON(os.Stderr, cfg.LogLevel)
}

func withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
