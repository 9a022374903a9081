package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var (
	tokenTTL    time.Duration
	tokenPrompt bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for the /cron and /setup endpoints",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: configured CronTokenTTL)")
	tokenCmd.Flags().BoolVar(&tokenPrompt, "prompt", false, "read the secret from the terminal")
}

func runToken(cmd *cobra.Command, args []string) error {
	secret := cfg.CronSecret
	if tokenPrompt || secret == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Cron secret: ")
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		secret = string(pw)
	}
	if secret == "" {
		return errors.New("empty secret")
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.CronTokenTTL
	}

	tok, err := auth.GenerateToken(auth.ScopeTrigger, []byte(secret), ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
