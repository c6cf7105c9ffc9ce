package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	pg "github.com/romariotrain/video-platform/internal/storage/postgres"
	"github.com/romariotrain/video-platform/internal/video/kafka"
	"github.com/romariotrain/video-platform/internal/video/outbox"
)

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	brokers := strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := envOr("KAFKA_TOPIC", "video.status-changed")
	interval, err := time.ParseDuration(envOr("OUTBOX_INTERVAL", "1s"))
	if err != nil {
		return fmt.Errorf("parse OUTBOX_INTERVAL: %w", err)
	}
	batchSize, err := strconv.Atoi(envOr("OUTBOX_BATCH_SIZE", "100"))
	if err != nil {
		return fmt.Errorf("parse OUTBOX_BATCH_SIZE: %w", err)
	}

	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: brokers,
		Topic:   topic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	publisher, err := outbox.NewPublisher(outbox.PublisherConfig{
		Source:    pg.NewOutboxRepo(db),
		Sink:      producer,
		Interval:  interval,
		BatchSize: batchSize,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
