// Command api runs the fraud analysis HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mullbar/fraudgraph/internal/api/rest"
	"github.com/mullbar/fraudgraph/internal/infrastructure/cache"
	"github.com/mullbar/fraudgraph/internal/infrastructure/config"
	"github.com/mullbar/fraudgraph/internal/infrastructure/telemetry"
	"github.com/mullbar/fraudgraph/internal/metrics"
	"github.com/mullbar/fraudgraph/internal/service/analysis"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    "fraudgraph-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The cache is an optimization; run uncached rather than refuse to start.
			logger.Warn("redis unreachable, result cache disabled", "addr", cfg.Redis.Addr, "error", err)
			redisClient = nil
		}
	}

	svc := analysis.NewService(cfg.Analysis, logger)
	resultCache := cache.NewResultCache(redisClient, logger, cfg.Redis.TTL)
	handler := rest.NewHandler(svc, resultCache, logger, cfg.Server.MaxUploadBytes, metrics.NewRegistry())
	server := rest.NewServer(cfg, handler, logger)

	if err := server.Run(ctx); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
