package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/blisstech/pharmacy-api/internal/config"
	"github.com/blisstech/pharmacy-api/internal/email"
	"github.com/blisstech/pharmacy-api/internal/repository/postgres"
	"github.com/blisstech/pharmacy-api/pkg/logger"
	"github.com/blisstech/pharmacy-api/pkg/messaging/redis"
	"github.com/blisstech/pharmacy-api/pkg/metrics"
	"github.com/blisstech/pharmacy-api/pkg/worker"
)

func main() {
	baseLogger := logger.Setup("pharmacy-worker", os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)

	broker, err := redis.NewBroker(cfg.Redis.ToBrokerConfig(), &baseLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	alerter := email.NewService(cfg.SMTP.ToEmailConfig())
	m := metrics.NewMetrics("pharmacy_worker")

	relay, err := worker.NewOutboxRelay(outboxRepo, broker, alerter, cfg.Outbox.ToRelayConfig(), baseLogger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build outbox relay")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go relay.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()
}
