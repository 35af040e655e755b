package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Header is a single Kafka record header.
type Header struct {
	Key   string
	Value string
}

// Producer writes keyed records to any topic. Records with the same key land on the same partition.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer that waits for all in-sync replicas to acknowledge each write.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
		},
		logger: logger,
	}
}

// Publish writes one record and blocks until the broker acknowledges it.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte, headers ...Header) error {
	const op = "kafka.Producer.Publish"

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	for _, h := range headers {
		msg.Headers = append(msg.Headers, kafkago.Header{Key: h.Key, Value: []byte(h.Value)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: topic %s: %w", op, topic, err)
	}

	p.logger.Debug("kafka record published",
		zap.String("topic", topic),
		zap.String("key", key),
	)
	return nil
}

// Close flushes pending writes and releases connections.
func (p *Producer) Close() error {
	return p.writer.Close()
}
