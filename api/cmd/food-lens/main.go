package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"food-lens/api/internal/config"
	"food-lens/api/internal/handle"
	"food-lens/api/internal/httpserver"
	"food-lens/api/internal/logger"
	"food-lens/api/internal/service"
	"food-lens/api/internal/upload"
	"food-lens/api/internal/vision"
	"food-lens/api/internal/vision/cloud"
	"food-lens/api/internal/vision/gemini"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Engine == config.EngineVision && cfg.Vision.APIKey == "" {
		log.Warn("GOOGLE_VISION_API_KEY is empty; /upload-image will fail until it is set")
	}

	engines := vision.NewEngines(cfg.Engine,
		cloud.New(cfg.Vision.APIKey, cfg.Vision.Endpoint, cfg.Vision.Timeout),
		gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model),
	)
	engine, err := engines.Default()
	if err != nil {
		log.Fatal("Failed to select annotation engine", zap.Error(err))
	}
	engine = vision.WithRetry(engine, cfg.Vision.RetryAttempts, cfg.Vision.RetryBackoff, log)

	store, err := upload.NewStore(context.Background(), cfg.Upload, log)
	if err != nil {
		log.Fatal("Failed to create upload store", zap.Error(err))
	}

	features := vision.DefaultFeatures(cfg.Vision.MaxLabels, cfg.Vision.MaxObjects, cfg.Vision.MaxText)
	svc := service.NewAnnotator(store, engine, features, cfg.Vision.Timeout, log)
	srv := httpserver.New(cfg, handle.New(svc, log), log)

	log.Info("food-lens starting",
		zap.String("engine", engine.Name()),
		zap.Strings("engines", engines.Names()),
		zap.Duration("backend_timeout", cfg.Vision.Timeout),
		zap.Int("retry_attempts", cfg.Vision.RetryAttempts),
		zap.Bool("s3_store", cfg.Upload.UseS3()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
