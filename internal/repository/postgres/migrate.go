package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations through the pool.
// Migration files reference ${TABLE_PREFIX}; goose expands it from the environment,
// so the prefix is exported before running.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return runWithDB(ctx, db, tables)
}

func runWithDB(ctx context.Context, db *sql.DB, tables *TableNames) error {
	if err := os.Setenv("TABLE_PREFIX", tables.Prefix); err != nil {
		return fmt.Errorf("export table prefix: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetTableName(tables.Prefix + "goose_db_version")

	if err := gooseUpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
