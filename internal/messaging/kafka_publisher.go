package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// KafkaPublisher emits normalized batches to Kafka for downstream consumers
// (the optimizer service reads the same topic).
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration.
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "normalized_odds"
}

// NewKafkaPublisher creates a new Kafka publisher.
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishNormalized publishes one normalized batch wrapped in the message
// envelope. The batch id keys the message so downstream partitioning stays
// stable per run.
func (p *KafkaPublisher) PublishNormalized(ctx context.Context, batch models.NormalizedBatch) error {
	msg := models.KafkaNormalizedBatchMessage{
		BatchID:   uuid.New().String(),
		Batch:     batch,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal batch message: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.BatchID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to write batch message: %w", err)
	}

	p.logger.Info().
		Str("batch_id", msg.BatchID).
		Int("games", len(batch.Games)).
		Int("odds", len(batch.Odds)).
		Msg("published normalized batch")

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
