package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens the SQLite database at path. The log is used by a single
// process, so one connection is kept for its whole lifetime.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

// InitDB brings the schema up to date. It is safe to call on a fresh file,
// on a database written by an older version of the tool, and repeatedly.
func InitDB(ctx context.Context, conn *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys,
		goose.WithGoMigrations(
			goose.NewGoMigration(2, &goose.GoFunc{RunTx: addTagsColumn}, nil),
		),
	)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// addTagsColumn adds words.tags to databases created before tags existed.
// Fresh databases already have it from the first migration.
func addTagsColumn(ctx context.Context, tx *sql.Tx) error {
	cols, err := tableColumns(ctx, tx, "words")
	if err != nil {
		return err
	}
	if cols["tags"] {
		return nil
	}
	_, err = tx.ExecContext(ctx, `ALTER TABLE words ADD COLUMN tags TEXT NOT NULL DEFAULT ''`)
	return err
}

func tableColumns(ctx context.Context, db DBExecutor, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
