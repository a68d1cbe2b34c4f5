// cmd/demo-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"housepredict/internal/artifact"
	"housepredict/internal/common/config"
	"housepredict/internal/common/logger"
	"housepredict/internal/hub"
	"housepredict/internal/predictor"
	"housepredict/internal/server"
	"housepredict/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting demo server", map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	ctx := context.Background()

	// --- Resolve and load artifacts ---
	var downloader artifact.Downloader
	if cfg.Hub.RepoID != "" {
		downloader = hub.NewClient(cfg.Hub.BaseURL, cfg.Hub.Token,
			time.Duration(cfg.Hub.Timeout)*time.Second, log)
	}
	resolver := artifact.NewResolver(downloader, cfg.Hub.RepoID, cfg.Artifacts.CacheDir, log)

	modelPath, err := resolver.Resolve(ctx, cfg.Artifacts.ModelPath, cfg.Artifacts.ModelFilename)
	if err != nil {
		zapLog.Fatal("resolve model artifact", zap.Error(err))
	}
	pipelinePath, err := resolver.Resolve(ctx, cfg.Artifacts.PipelinePath, cfg.Artifacts.PipelineFilename)
	if err != nil {
		zapLog.Fatal("resolve pipeline artifact", zap.Error(err))
	}

	pred := predictor.New(log)
	if err := pred.Load(modelPath, pipelinePath); err != nil {
		zapLog.Fatal("load artifacts", zap.Error(err))
	}

	// --- Optional side channels ---
	var opts []server.Option
	if cfg.Store.Postgres.Enabled {
		db, err := store.Connect(cfg.Store.Postgres)
		if err != nil {
			zapLog.Fatal("connect postgres", zap.Error(err))
		}
		defer db.Close()
		opts = append(opts, server.WithRecorder(store.NewPostgresRecorder(db)))
		log.Info("prediction audit log enabled", nil)
	}
	if cfg.Store.Redis.Enabled {
		client := store.NewRedisClient(cfg.Store.Redis)
		defer client.Close()
		cache := store.NewPredictionCache(client, time.Duration(cfg.Store.Redis.TTL)*time.Second)
		opts = append(opts, server.WithCache(cache))
		log.Info("prediction cache enabled", nil)
	}

	srv := server.New(cfg.HTTP, pred, log, opts...)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx,
		time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown", nil)
	}
}
