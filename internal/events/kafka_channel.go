package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/platform/kafka"
	"github.com/stayloop/service-booking/internal/platform/metrics"
)

// KafkaChannel carries booking events over Kafka. Messages are keyed by booking ID so
// every event of one booking lands on one partition, in order.
type KafkaChannel struct {
	producer *kafka.Producer
	brokers  []string
	groupID  string
	bus      *Bus
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewKafkaChannel creates a new KafkaChannel. m may be nil.
func NewKafkaChannel(brokers []string, groupID string, bus *Bus, m *metrics.Metrics, logger *zap.Logger) *KafkaChannel {
	return &KafkaChannel{
		producer: kafka.NewProducer(brokers, logger),
		brokers:  brokers,
		groupID:  groupID,
		bus:      bus,
		metrics:  m,
		logger:   logger,
	}
}

// Publish marshals payload to JSON and writes it with event_id and event_type headers.
func (c *KafkaChannel) Publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	eventType := topic
	if t, ok := payload.(Typed); ok {
		eventType = t.EventType()
	}

	err = c.producer.Publish(ctx, topic, key, value,
		kafka.Header{Key: HeaderEventID, Value: uuid.NewString()},
		kafka.Header{Key: HeaderEventType, Value: eventType},
	)
	if err != nil {
		if c.metrics != nil {
			c.metrics.PublishFailures.WithLabelValues(topic).Inc()
		}
		return err
	}
	if c.metrics != nil {
		c.metrics.EventsPublished.WithLabelValues(topic).Inc()
	}
	return nil
}

// Run consumes every topic the Bus has handlers for until ctx is cancelled.
// Subscriptions made after Run starts are not picked up.
func (c *KafkaChannel) Run(ctx context.Context) error {
	topics := c.bus.Topics()
	if len(topics) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	consumer := kafka.NewConsumer(c.brokers, c.groupID, topics, c.logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			c.logger.Warn("failed to close kafka consumer", zap.Error(err))
		}
	}()

	return consumer.Consume(ctx, func(ctx context.Context, m kafkago.Message) error {
		c.bus.Dispatch(ctx, fromKafka(m))
		return nil
	})
}

// Close flushes the producer.
func (c *KafkaChannel) Close() error {
	return c.producer.Close()
}

func fromKafka(m kafkago.Message) Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Topic:   m.Topic,
		Key:     string(m.Key),
		Value:   m.Value,
		Headers: headers,
	}
}
