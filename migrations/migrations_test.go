package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestFS(t *testing.T) {
	for _, dialect := range []string{SQLite, ClickHouse} {
		t.Run(dialect, func(t *testing.T) {
			fsys, err := FS(dialect)
			require.NoError(t, err)

			names, err := fs.Glob(fsys, "*.sql")
			require.NoError(t, err)
			assert.Contains(t, names, "00001_init.sql")
		})
	}
}

func TestFS_UnknownDialect(t *testing.T) {
	_, err := FS("postgres")
	assert.Error(t, err)
}

func TestNewProvider_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	provider, err := NewProvider(SQLite, db)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := provider.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = provider.Down(ctx)
	require.NoError(t, err)
	version, err = provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}
