package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ubonisrael/alx-files-manager/internal/server/config"
	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/kv"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
	"github.com/ubonisrael/alx-files-manager/internal/server/storage"
	"github.com/ubonisrael/alx-files-manager/internal/server/worker"
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
		"db", cfg.MongoURI(),
		"redis", cfg.RedisAddr,
		"folder_path", cfg.FolderPath,
		"concurrency", cfg.WorkerConcurrency,
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

	// Wire the consumers
	blobs := storage.NewBlobStore(cfg.FolderPath)
	userRepo := database.NewUserRepository(db)
	fileRepo := database.NewFileRepository(db)

	thumbnails := worker.NewThumbnailWorker(fileRepo, blobs)
	welcomes := worker.NewWelcomeWorker(userRepo)

	fileRunner := worker.NewRunner(
		queue.New(redisClient, queue.FileQueue),
		thumbnails.Process,
		cfg.WorkerConcurrency,
	)
	userRunner := worker.NewRunner(
		queue.New(redisClient, queue.UserQueue),
		welcomes.Process,
		1,
	)

	runCtx, cancelRun := context.WithCancel(context.Background())
	fileRunner.Start(runCtx)
	userRunner.Start(runCtx)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	cancelRun()
	fileRunner.Wait()
	userRunner.Wait()

	slog.Info("worker exited cleanly")
}
