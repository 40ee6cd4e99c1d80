// Package migrations embeds the goose SQL migrations of every backend.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql clickhouse/*.sql
var files embed.FS

// Dialect directories
const (
	SQLite     = "sqlite"
	ClickHouse = "clickhouse"
)

// FS returns the migrations of one dialect with the files at its root
func FS(dialect string) (fs.FS, error) {
	switch dialect {
	case SQLite, ClickHouse:
	default:
		return nil, fmt.Errorf("unknown migrations dialect %q", dialect)
	}
	return fs.Sub(files, dialect)
}

// NewProvider creates a goose provider over the embedded migrations of
// dialect
func NewProvider(dialect string, db *sql.DB) (*goose.Provider, error) {
	fsys, err := FS(dialect)
	if err != nil {
		return nil, err
	}

	gooseDialect := goose.DialectSQLite3
	if dialect == ClickHouse {
		gooseDialect = goose.DialectClickHouse
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, nil
}
