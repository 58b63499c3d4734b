// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"docustream/internal/config"
	"docustream/internal/domain/ports"
	"docustream/internal/infra/logging"
	"docustream/internal/infra/metrics"
	"docustream/internal/infra/queue"
	red "docustream/internal/infra/redis"
	"docustream/internal/infra/web"
	"docustream/internal/infra/ws"
	"docustream/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Queue (fatal if the broker is unreachable at startup) ----
	queueClient := queue.NewClient(cfg.Queue, logger)
	if err := queueClient.Initialize(ctx); err != nil {
		logger.Fatal().Err(err).Msg("queue")
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("queue close")
		}
	}()

	// ---- Redis (optional; throttles upload intake when configured) ----
	var limiter ports.RateLimiter = red.NoopLimiter{}
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("upload rate limiting enabled")
	}

	// ---- Connection registry + live status channel ----
	registry := ws.NewRegistry(cfg.Status.GracePeriod.Std(), logger)
	defer registry.Shutdown()
	statusHandler := ws.NewHandler(registry, logger)

	// ---- Use cases ----
	intakeUC := usecase.NewIntakeUseCase(cfg.Upload, queueClient, logger)
	notifyUC := usecase.NewNotifyUseCase(registry, logger)

	// ---- HTTP server ----
	server := web.NewServer(cfg, intakeUC, notifyUC, statusHandler, limiter, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("http server")
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
