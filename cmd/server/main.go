package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ubonisrael/alx-files-manager/internal/server/api"
	"github.com/ubonisrael/alx-files-manager/internal/server/config"
	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/kv"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
	"github.com/ubonisrael/alx-files-manager/internal/server/service"
	"github.com/ubonisrael/alx-files-manager/internal/server/session"
	"github.com/ubonisrael/alx-files-manager/internal/server/storage"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"db", cfg.MongoURI(),
		"redis", cfg.RedisAddr,
		"folder_path", cfg.FolderPath,
	)

	// Connect to the document store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.MongoURI(), cfg.DBName)
	cancel()
	if err != nil {
		slog.Error("failed to connect to document store", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	// Connect to redis
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := kv.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	cancel()
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize blob storage
	blobs := storage.NewBlobStore(cfg.FolderPath)
	if err := blobs.EnsureDir(); err != nil {
		slog.Error("failed to initialize blob storage", "error", err)
		os.Exit(1)
	}
	slog.Info("blob storage initialized", "path", cfg.FolderPath)

	// Wire repositories, stores and services
	cache := kv.NewRedisKV(redisClient)
	sessions := session.NewStore(cache, cfg.SessionTTL)
	fileQueue := queue.New(redisClient, queue.FileQueue)
	userQueue := queue.New(redisClient, queue.UserQueue)

	userRepo := database.NewUserRepository(db)
	fileRepo := database.NewFileRepository(db)

	userSvc := service.NewUserService(userRepo, sessions, userQueue)
	authSvc := service.NewAuthService(userRepo, sessions)
	fileSvc := service.NewFileService(fileRepo, blobs, fileQueue)

	// Setup HTTP router
	handler := api.NewHandler(userSvc, authSvc, fileSvc, db, cache)
	e := api.SetupRouter(handler, userSvc)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited cleanly")
}
