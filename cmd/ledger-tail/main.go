// Command ledger-tail follows the ledger event topic and writes every event
// to the structured log, giving operators an audit trail of what the
// ledger published.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"venueledger/internal/shared/config"
	"venueledger/pkg/broker"
	"venueledger/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := config.LoadWithFile(path)
		if err != nil {
			slog.Error("failed to load config file", "error", err)
			os.Exit(1)
		}
		cfg = fileCfg
	}

	appLogger := logger.NewWithLevel(cfg.LogLevel, os.Stdout)
	logger.SetDefault(appLogger)

	if cfg.Broker.Driver != broker.DriverKafka {
		appLogger.Error("ledger-tail needs BROKER_DRIVER=kafka", slog.String("driver", cfg.Broker.Driver))
		os.Exit(1)
	}

	consumer, err := broker.NewKafkaConsumer(broker.ConsumerConfig{
		Brokers:      cfg.Broker.Brokers,
		GroupID:      cfg.Broker.GroupID,
		Topics:       []string{cfg.Broker.Topic},
		OffsetOldest: os.Getenv("TAIL_FROM_START") == "true",
		MaxRetries:   0,
	}, func(ctx context.Context, event broker.Event) error {
		appLogger.InfoContext(ctx, "ledger event",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.String("key", event.Key),
			slog.Time("occurred_at", event.OccurredAt),
			slog.Any("payload", event.Payload),
		)
		return nil
	})
	if err != nil {
		appLogger.Error("failed to start consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Tailing ledger events", slog.String("topic", cfg.Broker.Topic), slog.String("group", cfg.Broker.GroupID))
	if err := consumer.Run(ctx); err != nil {
		appLogger.Error("consumer stopped", slog.Any("error", err))
	}
	if err := consumer.Close(); err != nil {
		appLogger.Error("failed to close consumer", slog.Any("error", err))
	}
}
