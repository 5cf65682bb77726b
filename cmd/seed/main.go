package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"prompthub/internal/auth"
	"prompthub/internal/config"
	"prompthub/internal/repository/postgres"
	postgresDocsys "prompthub/internal/repository/postgres/docsystem"
	"prompthub/internal/seed"
	"prompthub/internal/service"
	serviceDocsys "prompthub/internal/service/docsystem"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "dev@prompthub.local", "Email of the development user")
	password := flag.String("password", "prompthub-dev", "Password of the development user (only used when creating)")
	clearData := flag.Bool("clear-data", false, "Delete the user's folders and documents before seeding")
	resetUser := flag.Bool("reset-user", false, "Delete the Supabase user and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// Prevent destructive operations in production
	if cfg.Environment == "prod" && (*clearData || *resetUser) {
		log.Fatalf("refusing to run --clear-data or --reset-user in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

	if *resetUser {
		if err := admin.DeleteUserByEmail(ctx, *email); err != nil {
			log.Fatalf("Failed to delete user: %v", err)
		}
		logger.Info("user deleted", "email", *email)
		return
	}

	userID, err := admin.EnsureUser(ctx, *email, *password)
	if err != nil {
		log.Fatalf("Failed to ensure dev user: %v", err)
	}
	logger.Info("dev user ready", "email", *email, "user_id", userID)

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.RunMigrations(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresDocsys.NewDocumentRepository(repoConfig)
	folderRepo := postgresDocsys.NewFolderRepository(repoConfig)
	versionRepo := postgresDocsys.NewVersionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	profileService := service.NewProfileService(postgres.NewProfileRepository(repoConfig), logger)
	if err := profileService.EnsureProfile(ctx, userID); err != nil {
		log.Fatalf("Failed to ensure profile: %v", err)
	}

	if *clearData {
		if err := clearUserData(ctx, pool, tables, userID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("existing data cleared", "user_id", userID)
	}

	validator := serviceDocsys.NewResourceValidator(folderRepo, docRepo)
	docService := serviceDocsys.NewDocumentService(docRepo, versionRepo, txManager, validator, logger)
	folderService := serviceDocsys.NewFolderService(folderRepo, docRepo, validator, logger)

	res, err := seed.NewSeeder(folderService, docService, logger).Seed(ctx, userID, seed.DefaultLibrary())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	logger.Info("seeding complete",
		"folders", res.Folders,
		"documents", res.Documents,
		"versions", res.Versions,
		"skipped", res.Skipped,
	)
}

// clearUserData removes every folder of the user; documents and versions cascade.
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, userID string) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders+" WHERE user_id = $1", userID)
	return err
}
