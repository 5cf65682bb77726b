package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// dropStatements lists the tables of one prefix, children first.
func dropStatements(tables *TableNames) []string {
	names := []string{
		tables.Versions,
		tables.Documents,
		tables.Folders,
		tables.Profiles,
		tables.Prefix + "goose_db_version",
	}
	stmts := make([]string, 0, len(names))
	for _, n := range names {
		stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", n))
	}
	return stmts
}

// DropAll removes every table of the prefix, including the migration ledger,
// so the next RunMigrations starts from an empty schema.
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range dropStatements(tables) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return tx.Commit(ctx)
}
