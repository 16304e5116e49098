package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/recipe-share/internal/api"
	"github.com/dom/recipe-share/internal/config"
	"github.com/dom/recipe-share/internal/repository/postgres"
	"github.com/dom/recipe-share/internal/service"
	"github.com/dom/recipe-share/internal/storage"
	"github.com/dom/recipe-share/internal/websocket"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, logLevel)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize image storage
	images, imageDir, err := newImageStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize image storage: %v", err)
	}

	// Initialize recipe feed
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, images, hub, cfg)

	// Initialize router
	router := api.NewRouter(services, hub, imageDir, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	hub.Stop()

	log.Println("Server stopped")
}

// newImageStore returns the configured backend and, for local storage, the
// directory to serve under /images/.
func newImageStore(cfg *config.Config) (storage.ImageStore, string, error) {
	if cfg.ImageStorage == config.ImageStorageS3 {
		store, err := storage.NewS3ImageStore(context.Background(), storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}

	store, err := storage.NewLocalImageStore(cfg.ImageDir, cfg.PublicURL)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
