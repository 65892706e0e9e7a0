package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"

	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"
)

// Publisher delivers accepted hand-offs to the checkout system
type Publisher interface {
	Publish(ctx context.Context, handOff *HandOff) error
	Close() error
}

// KafkaPublisher writes hand-offs to a topic, keyed by event so one event's hand-offs stay ordered
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// same event, same partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewPublisher(producer, cfg.HandOffTopic, log), nil
}

// NewPublisher wraps an existing producer
func NewPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, handOff *HandOff) error {
	value, err := json.Marshal(handOff)
	if err != nil {
		return fmt.Errorf("failed to marshal hand-off: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(handOff.EventID),
		Value:     sarama.ByteEncoder(value),
		Headers:   headers(handOff),
		Timestamp: handOff.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send hand-off to Kafka: %w", err)
	}

	p.logger.DebugContext(ctx, "hand-off published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"handoff_id", handOff.ID,
	)
	return nil
}

func headers(handOff *HandOff) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("handoff_id"), Value: []byte(handOff.ID)},
		{Key: []byte("event_id"), Value: []byte(handOff.EventID)},
		{Key: []byte("sector_id"), Value: []byte(handOff.SectorID)},
		{Key: []byte("user_id"), Value: []byte(handOff.UserID)},
		{Key: []byte("producer"), Value: []byte("boxoffice-checkout")},
		{Key: []byte("created_at"), Value: []byte(handOff.CreatedAt.Format(time.RFC3339))},
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
