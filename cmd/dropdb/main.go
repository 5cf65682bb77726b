// Command dropdb drops every PromptHub table of the configured environment.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"prompthub/internal/config"
	"prompthub/internal/repository/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" {
		log.Fatalf("refusing to drop tables in production")
	}
	if cfg.SupabaseDBURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.DropAll(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}
	logger.Info("all tables dropped", "prefix", tables.Prefix)
}
