package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"tally.com/internal/domain/entity"
	"tally.com/internal/infrastructure/logger"
)

// KafkaPublisher emits settlement events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaPublisher creates a publisher writing to the given brokers/topic.
func NewKafkaPublisher(brokers []string, topic string, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: log,
	}
}

// PublishSettlement marshals the event and writes one message per batch.
func (p *KafkaPublisher) PublishSettlement(ctx context.Context, event entity.SettlementCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal settlement event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("write settlement event: %w", err)
	}

	p.logger.LogDebug(ctx, "settlement event published",
		"topic", p.writer.Topic,
		"batch_size", event.BatchSize)
	return nil
}

// Close releases the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
