package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/platform/metrics"
)

// ErrChannelClosed is returned by Publish after Close.
var ErrChannelClosed = errors.New("event channel closed")

// MemoryChannel is an in-process channel for local runs and tests. One loop delivers
// messages in publish order.
type MemoryChannel struct {
	bus     *Bus
	queue   chan Message
	done    chan struct{}
	once    sync.Once
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMemoryChannel creates a MemoryChannel holding up to buffer undelivered messages.
func NewMemoryChannel(bus *Bus, buffer int, m *metrics.Metrics, logger *zap.Logger) *MemoryChannel {
	if buffer < 1 {
		buffer = 1
	}
	return &MemoryChannel{
		bus:     bus,
		queue:   make(chan Message, buffer),
		done:    make(chan struct{}),
		metrics: m,
		logger:  logger,
	}
}

// Publish enqueues payload. It blocks while the buffer is full.
func (c *MemoryChannel) Publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	eventType := topic
	if t, ok := payload.(Typed); ok {
		eventType = t.EventType()
	}
	msg := Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: map[string]string{HeaderEventID: uuid.NewString(), HeaderEventType: eventType},
	}

	select {
	case <-c.done:
		c.countFailure(topic)
		return ErrChannelClosed
	default:
	}

	select {
	case c.queue <- msg:
		if c.metrics != nil {
			c.metrics.EventsPublished.WithLabelValues(topic).Inc()
		}
		return nil
	case <-c.done:
		c.countFailure(topic)
		return ErrChannelClosed
	case <-ctx.Done():
		c.countFailure(topic)
		return ctx.Err()
	}
}

// Run delivers queued messages until ctx is cancelled or the channel is closed.
// Messages still queued at Close are delivered before Run returns.
func (c *MemoryChannel) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			for {
				select {
				case msg := <-c.queue:
					c.bus.Dispatch(ctx, msg)
				default:
					return nil
				}
			}
		case msg := <-c.queue:
			c.bus.Dispatch(ctx, msg)
		}
	}
}

// Close stops accepting messages.
func (c *MemoryChannel) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *MemoryChannel) countFailure(topic string) {
	if c.metrics != nil {
		c.metrics.PublishFailures.WithLabelValues(topic).Inc()
	}
}
