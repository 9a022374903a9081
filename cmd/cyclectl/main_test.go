package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cyclekeeper/internal/auth"
	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	orig := loadConfig
	loadConfig = func() *config.Config {
		c := &config.Config{}
		c.LoadDefaults()
		if mutate != nil {
			mutate(c)
		}
		return c
	}
	t.Cleanup(func() { loadConfig = orig })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		tokenTTL, tokenPrompt, tickAt = 0, false, ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRoot_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "token", "tick", "mcp"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestToken_UsesConfiguredSecret(t *testing.T) {
	stubConfig(t, func(c *config.Config) { c.CronSecret = "cron-secret" })

	out, err := execute(t, "token", "--ttl", "1h")
	require.NoError(t, err)

	scope, err := auth.ScopeFromToken(strings.TrimSpace(out), []byte("cron-secret"))
	require.NoError(t, err)
	assert.Equal(t, auth.ScopeTrigger, scope)
}

func TestToken_PromptsWithoutSecret(t *testing.T) {
	stubConfig(t, func(c *config.Config) { c.CronSecret = "" })
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }
	t.Cleanup(func() { readPassword = orig })

	out, err := execute(t, "token")
	require.NoError(t, err)

	_, err = auth.ScopeFromToken(strings.TrimSpace(out), []byte("typed"))
	assert.NoError(t, err)
}

func TestToken_EmptyPromptFails(t *testing.T) {
	stubConfig(t, func(c *config.Config) { c.CronSecret = "" })
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return nil, nil }
	t.Cleanup(func() { readPassword = orig })

	_, err := execute(t, "token")
	assert.EqualError(t, err, "empty secret")
}

func TestToken_IgnoresServerFlags(t *testing.T) {
	stubConfig(t, func(c *config.Config) { c.CronSecret = "k" })

	_, err := execute(t, "token", "-d", "postgres://elsewhere")
	assert.NoError(t, err)
}

func TestTickTime(t *testing.T) {
	now := time.Date(2026, 10, 19, 21, 0, 42, 0, time.UTC)

	got, err := tickTime("", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)))

	got, err = tickTime("2026-10-19T23:55:00+03:00", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 19, 20, 55, 0, 0, time.UTC)))

	_, err = tickTime("yesterday", now)
	assert.Error(t, err)
}

type fakeManager struct {
	repomanager.RepositoryManager
	migrated bool
	err      error
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.err
}

func stubStorage(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	origOpen, origManager := openDB, newRepositoryManager
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return m }
	t.Cleanup(func() { openDB, newRepositoryManager = origOpen, origManager })
	return mock
}

func TestMigrate(t *testing.T) {
	stubConfig(t, nil)
	m := &fakeManager{}
	mock := stubStorage(t, m)

	out, err := execute(t, "migrate")
	require.NoError(t, err)

	assert.True(t, m.migrated)
	assert.Equal(t, "Migrations applied.\n", out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	stubConfig(t, nil)
	stubStorage(t, &fakeManager{err: errors.New("dirty")})

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error: dirty")
}

func TestMigrate_OpenError(t *testing.T) {
	stubConfig(t, nil)
	orig := openDB
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("db ping error") }
	t.Cleanup(func() { openDB = orig })

	_, err := execute(t, "migrate")
	assert.EqualError(t, err, "db ping error")
}
