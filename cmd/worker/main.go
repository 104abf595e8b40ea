package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/pkg/logger"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/messaging/redis"
)

// The worker tails the change notification channel and logs every event.
func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.Redis.URL == "" {
		log.Fatal().Msg("redis url is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
	}, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	log.Info().Str("channel", cfg.Redis.Channel).Msg("worker started")

	err = messaging.Consume(ctx, broker, cfg.Redis.Channel, func(_ context.Context, e messaging.Event) error {
		log.Info().
			Str("type", e.Type).
			Str("id", e.ID).
			Time("at", e.At).
			Msg("change notification")
		return nil
	}, zl)
	if err != nil {
		log.Error().Err(err).Msg("worker stopped")
		return
	}

	log.Info().Msg("worker shutting down")
}
