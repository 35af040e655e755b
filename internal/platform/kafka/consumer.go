package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one record. A returned error is logged; the record is still committed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// recordReader is the part of *kafkago.Reader the consumer loop uses.
type recordReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// retryBackoff is the pause after a failed fetch or commit.
var retryBackoff = time.Second

// Consumer reads a set of topics as a member of a consumer group.
type Consumer struct {
	reader recordReader
	topics []string
	logger *zap.Logger
}

// NewConsumer creates a Consumer for groupID over topics. A group without committed
// offsets starts from the oldest retained record.
func NewConsumer(brokers []string, groupID string, topics []string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafkago.FirstOffset,
		CommitInterval: 0,
	})
	return &Consumer{
		reader: reader,
		topics: topics,
		logger: logger,
	}
}

// Consume fetches records one at a time until ctx is cancelled or the reader is closed.
// Records are handled sequentially, so per-partition order is preserved. Fetch and
// commit failures are logged and retried; a record whose commit failed may be
// delivered again.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("kafka consumer started", zap.Strings("topics", c.topics))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, kafkago.ErrGroupClosed) {
				return nil
			}
			c.logger.Error("failed to fetch kafka record", zap.Error(err))
			if err := sleep(ctx, retryBackoff); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("kafka record handler failed",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, kafkago.ErrGroupClosed) {
				return nil
			}
			c.logger.Warn("failed to commit kafka offset",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if err := sleep(ctx, retryBackoff); err != nil {
				return err
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
