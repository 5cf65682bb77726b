package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prompthub/internal/auth"
	"prompthub/internal/config"
	"prompthub/internal/handler"
	"prompthub/internal/middleware"
	"prompthub/internal/ratelimit"
	"prompthub/internal/repository/postgres"
	postgresDocsys "prompthub/internal/repository/postgres/docsystem"
	"prompthub/internal/service"
	serviceDocsys "prompthub/internal/service/docsystem"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("migrations applied")
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresDocsys.NewDocumentRepository(repoConfig)
	folderRepo := postgresDocsys.NewFolderRepository(repoConfig)
	versionRepo := postgresDocsys.NewVersionRepository(repoConfig)
	profileRepo := postgres.NewProfileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	validator := serviceDocsys.NewResourceValidator(folderRepo, docRepo)
	docService := serviceDocsys.NewDocumentService(docRepo, versionRepo, txManager, validator, logger)
	folderService := serviceDocsys.NewFolderService(folderRepo, docRepo, validator, logger)
	treeService := serviceDocsys.NewTreeService(folderRepo, docRepo, logger)
	workspaceService := serviceDocsys.NewWorkspaceService(folderRepo, docRepo, versionRepo, logger)
	profileService := service.NewProfileService(profileRepo, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)

	autoSaveLimiter := ratelimit.New(cfg.AutoSaveRPS, cfg.AutoSaveBurst)
	defer autoSaveLimiter.Stop()
	rateLimited := middleware.RateLimit(autoSaveLimiter, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health(pool))

	// Workspace routes
	mux.HandleFunc("GET /api/workspace/snapshot", workspaceHandler.GetSnapshot)
	mux.HandleFunc("GET /api/workspace/tree", treeHandler.GetTree)
	mux.HandleFunc("GET /api/dashboard", workspaceHandler.GetDashboard)

	// Profile routes
	mux.HandleFunc("GET /api/profile", profileHandler.GetProfile)
	mux.HandleFunc("PATCH /api/profile", profileHandler.UpdateProfile)

	// Folder routes
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/documents", folderHandler.ListDocuments)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("POST /api/documents/validate", docHandler.ValidateDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.RenameDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.Handle("PUT /api/documents/{id}/content", rateLimited(http.HandlerFunc(docHandler.AutoSave)))
	mux.HandleFunc("POST /api/documents/{id}/versions", docHandler.SaveVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions", docHandler.ListVersions)
	mux.HandleFunc("GET /api/documents/{id}/versions/{versionId}", docHandler.GetVersion)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → EnsureProfile → Routes
	h = middleware.EnsureProfile(profileService, logger)(h)
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
