package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/filetypes"
	"docvault/internal/handler"
	"docvault/internal/middleware"
	"docvault/internal/repository/postgres"
	"docvault/internal/service/accounts"
	"docvault/internal/service/docsystem"
	"docvault/internal/service/search"
	"docvault/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
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

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)

	// Object storage
	store, err := storage.NewMinioStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// AI client (embeddings + answering)
	aiClient, err := search.NewOpenAIClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	// File type registry
	registry, err := filetypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize file type registry: %v", err)
	}

	// Create services
	pathResolver := docsystem.NewPathResolver(folderRepo, logger)
	relocator := docsystem.NewRelocator(store, logger)
	mutator := docsystem.NewMutationService(
		folderRepo,
		fileRepo,
		store,
		relocator,
		pathResolver,
		cfg.StorageRoot,
		config.FileChunkSize,
		logger,
	)
	lister := docsystem.NewListingService(folderRepo, fileRepo, pathResolver, registry, cfg.StorageRoot, logger)
	uploader := docsystem.NewUploadService(folderRepo, fileRepo, store, aiClient, pathResolver, cfg.StorageRoot, logger)
	treeService := docsystem.NewTreeService(folderRepo, logger)
	searchService := search.NewService(fileRepo, aiClient, aiClient, cfg.StorageRoot, config.RetrievalLimit, logger)
	accountService := accounts.NewService(userRepo, logger)

	// Create handlers
	browseHandler := handler.NewBrowseHandler(lister, logger)
	folderHandler := handler.NewFolderHandler(mutator, logger)
	fileHandler := handler.NewFileHandler(uploader, lister, pathResolver, fileRepo, store, logger)
	mutationHandler := handler.NewMutationHandler(mutator, logger)
	askHandler := handler.NewAskHandler(searchService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	adminHandler := handler.NewAdminHandler(accountService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Browse and tree
	mux.HandleFunc("GET /api/browse", browseHandler.Browse)
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)

	// File routes
	mux.HandleFunc("POST /api/files", fileHandler.Upload)
	mux.HandleFunc("GET /api/files/search", fileHandler.Search) // Must come before {id} route
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)

	// Mutations
	mux.HandleFunc("POST /api/mutations", mutationHandler.Apply)

	// Semantic search
	mux.HandleFunc("POST /api/ask", askHandler.Ask)

	// Admin routes
	mux.Handle("GET /api/admin/users", middleware.RequireAdmin(http.HandlerFunc(adminHandler.ListUsers)))
	mux.Handle("POST /api/admin/users/{id}/approve", middleware.RequireAdmin(http.HandlerFunc(adminHandler.ApproveUser)))
	mux.Handle("POST /api/admin/users/{id}/role", middleware.RequireAdmin(http.HandlerFunc(adminHandler.SetRole)))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier, accountService, logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
