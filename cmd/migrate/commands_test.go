package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrate_SQLiteUpAndDown(t *testing.T) {
	t.Setenv("DATABASE_FILE", filepath.Join(t.TempDir(), "bot.db"))

	for _, args := range [][]string{
		{"--backend", "sqlite", "up"},
		{"--backend", "sqlite", "status"},
		{"--backend", "sqlite", "version"},
		{"--backend", "sqlite", "down"},
	} {
		cmd := newRootCmd(zap.NewNop())
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		require.NoError(t, cmd.Execute(), args)
	}
}

func TestMigrate_UnknownBackend(t *testing.T) {
	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"--backend", "postgres", "up"})
	assert.Error(t, cmd.Execute())
}

func TestMigrate_CreateNeedsName(t *testing.T) {
	cmd := newRootCmd(zap.NewNop())
	cmd.SetArgs([]string{"create"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestClickHouseDSN(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch")
	t.Setenv("CLICKHOUSE_PORT", "9440")
	t.Setenv("CLICKHOUSE_USER", "bot")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")
	t.Setenv("CLICKHOUSE_DATABASE", "pub")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")

	assert.Equal(t,
		"clickhouse://bot:secret@ch:9440/pub?dial_timeout=10s&max_execution_time=60&secure=true",
		clickHouseDSN())
}
