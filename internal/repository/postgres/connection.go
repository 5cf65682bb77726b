package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"prompthub/internal/domain/repositories"
)

// RepositoryConfig is shared by every postgres repository.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames are the environment-prefixed table names (dev_, test_, prod_).
type TableNames struct {
	Prefix    string
	Profiles  string
	Folders   string
	Documents string
	Versions  string
}

// NewTableNames prefixes every table with prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:    prefix,
		Profiles:  fmt.Sprintf("%sprofiles", prefix),
		Folders:   fmt.Sprintf("%sfolders", prefix),
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Versions:  fmt.Sprintf("%sdocument_versions", prefix),
	}
}

// Pool sizing for the API server. Each request holds at most one connection.
const (
	maxPoolConns = 25
	minPoolConns = 5

	// supabasePoolerPort is the transaction-mode PgBouncer port, which cannot
	// hold prepared statements across transactions.
	supabasePoolerPort = 6543
)

// CreateConnectionPool parses databaseURL, opens a pool and pings it. Behind the
// transaction pooler the pool uses describe caching unless the URL already
// chose an exec mode.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	cfg.MaxConns = maxPoolConns
	cfg.MinConns = minPoolConns

	conn := cfg.ConnConfig
	if conn.Port == supabasePoolerPort && conn.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("using cache_describe exec mode behind pooler", "port", conn.Port)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// GetExecutor picks the transaction carried by ctx, falling back to the pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
