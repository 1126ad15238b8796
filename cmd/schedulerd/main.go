package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"equipment-scheduling-backend/config"
	"equipment-scheduling-backend/internal/api"
	"equipment-scheduling-backend/internal/db"
	"equipment-scheduling-backend/internal/notification"
	"equipment-scheduling-backend/internal/scheduling"
	"equipment-scheduling-backend/internal/seed"
	"equipment-scheduling-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "schedulerd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seed.EquipmentIfEmpty(ctx, gormDB, cfg.Seed.EquipmentFixtures); err != nil {
		logger.Fatalf("failed to seed equipment fixtures: %v", err)
	}

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	opts := scheduling.Options{
		AdjacentBuffer: cfg.Scheduling.AdjacentBuffer,
		NearBuffer:     cfg.Scheduling.NearBuffer,
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push is enabled but VAPID keys are not configured")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}

		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		workerPool.Start(ctx)
		opts.Notifier = workerPool
		logger.Printf("notification worker pool started (size %d)", cfg.WorkerPool.Size)
	}

	svc := scheduling.NewService(appStore, opts)

	router := api.NewRouter(svc, appStore, cfg.Server, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
