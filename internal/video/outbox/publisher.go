// Package outbox drains transactionally recorded domain events into the
// message broker. Publishing is decoupled from the write that produced the
// event, so a broker outage never blocks a webhook acknowledgement.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/storage/postgres"
)

// PendingSource is the slice of the outbox store the publisher needs.
type PendingSource interface {
	GetPending(ctx context.Context, limit int) ([]postgres.OutboxRecord, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// Sink is where drained events go; in production the Kafka producer.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher polls the outbox table and pushes pending events to the sink.
// Delivery is at-least-once: an event published but not marked processed is
// published again on the next tick, so consumers must dedupe by event id.
type Publisher struct {
	source    PendingSource
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

type PublisherConfig struct {
	Source    PendingSource
	Sink      Sink
	Interval  time.Duration
	BatchSize int
	Logger    zerolog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("outbox source is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("publish sink is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}

	return &Publisher{
		source:    cfg.Source,
		sink:      cfg.Sink,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

// Start blocks until the context is cancelled, draining one batch per tick.
// A failing batch is logged and retried on the next tick.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("interval", p.interval).
		Int("batch_size", p.batchSize).
		Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Err(ctx.Err()).Msg("outbox publisher stopped")
			return ctx.Err()

		case <-ticker.C:
			if err := p.PublishBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to publish batch")
			}
		}
	}
}

// PublishBatch drains up to batchSize pending events once.
func (p *Publisher) PublishBatch(ctx context.Context) error {
	records, err := p.source.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	var published, failed int
	for _, record := range records {
		eventLogger := p.logger.With().
			Str("event_id", record.EventID).
			Str("event_type", record.EventType).
			Str("aggregate_id", record.AggregateID).
			Int64("outbox_id", record.ID).
			Logger()

		if err := p.sink.Publish(ctx, record.EventID, record.Payload); err != nil {
			eventLogger.Error().Err(err).Msg("failed to publish event")
			failed++
			continue
		}
		published++

		if err := p.source.MarkProcessed(ctx, record.ID); err != nil {
			// Published but not marked: it will go out again next tick,
			// which at-least-once consumers already tolerate.
			eventLogger.Warn().Err(err).Msg("failed to mark event as processed")
		}
	}

	p.logger.Info().
		Int("total", len(records)).
		Int("published", published).
		Int("failed", failed).
		Msg("batch processed")
	return nil
}
