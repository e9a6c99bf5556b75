package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/casemigrate/internal/config"
	"github.com/rpattn/casemigrate/internal/db"
	"github.com/rpattn/casemigrate/internal/middleware"
	"github.com/rpattn/casemigrate/internal/migration"
	"github.com/rpattn/casemigrate/internal/organizations"
	"github.com/rpattn/casemigrate/internal/repository"
	"github.com/rpattn/casemigrate/internal/storage"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Select uploaded-file storage backend
	var store storage.ObjectStore
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Client(storage.S3Config{
			EndpointURL:     cfg.Storage.EndpointURL,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Region:          cfg.Storage.Region,
			UseSSL:          cfg.Storage.UseSSL,
		})
		if err != nil {
			logrus.Fatalf("Failed to create object store: %v", err)
		}
	default:
		store = storage.NewLocalStore(cfg.Storage.LocalRoot)
	}
	if err := store.EnsureBucket(ctx, cfg.Storage.Bucket); err != nil {
		logrus.Fatalf("Failed to prepare storage bucket: %v", err)
	}

	// Create repositories
	orgRepo := repository.NewOrganizationRepository(conn.Pool)
	jobRepo := repository.NewMigrationJobRepository(conn.Pool)
	templateRepo := repository.NewMappingTemplateRepository(conn.Pool)
	recordRepo := repository.NewMigrationRecordRepository(conn.Pool)

	// Create migration service. The deletion executor ships with the import
	// executor deployment; rollback stays disabled until one is registered.
	service := migration.NewService(
		jobRepo,
		templateRepo,
		recordRepo,
		store,
		nil,
		cfg.Storage.Bucket,
		cfg.Server.MaxFileSize,
		logrus.StandardLogger(),
	)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	migrationHandler := middleware.LoggingMiddleware(migration.NewHTTPHandler(service))
	http.Handle("/migrations", corsHandler.Handler(migrationHandler))
	http.Handle("/migrations/", corsHandler.Handler(migrationHandler))

	orgHandler := middleware.LoggingMiddleware(organizations.NewHTTPHandler(orgRepo))
	http.Handle("/organizations", corsHandler.Handler(orgHandler))
	http.Handle("/organizations/", corsHandler.Handler(orgHandler))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Starting migration server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
