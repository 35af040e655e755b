package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/platform/metrics"
)

type subscription struct {
	name    string
	handler Handler
}

// Bus owns the topic to handlers registry. Build one per process and hand it to every
// transport and subscriber.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewBus creates an empty Bus. m may be nil.
func NewBus(m *metrics.Metrics, logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]subscription),
		metrics:  m,
		logger:   logger,
	}
}

// Subscribe adds handler to topic. Handlers run in registration order.
func (b *Bus) Subscribe(topic, name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], subscription{name: name, handler: handler})
}

// Topics returns every topic with at least one handler, sorted.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics := make([]string, 0, len(b.handlers))
	for t, subs := range b.handlers {
		if len(subs) > 0 {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	return topics
}

// Dispatch runs every handler registered for msg.Topic. A failing or panicking handler
// is logged and does not stop the others.
func (b *Bus) Dispatch(ctx context.Context, msg Message) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[msg.Topic]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.logger.Debug("no handlers for topic", zap.String("topic", msg.Topic))
		return
	}
	if b.metrics != nil {
		b.metrics.EventsConsumed.WithLabelValues(msg.Topic).Inc()
	}

	for _, sub := range subs {
		if err := invoke(ctx, sub.handler, msg); err != nil {
			if b.metrics != nil {
				b.metrics.HandlerFailures.WithLabelValues(msg.Topic).Inc()
			}
			b.logger.Error("event handler failed",
				zap.String("topic", msg.Topic),
				zap.String("handler", sub.name),
				zap.String("key", msg.Key),
				zap.String("event_id", msg.Headers[HeaderEventID]),
				zap.Error(err),
			)
		}
	}
}

func invoke(ctx context.Context, h Handler, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, msg)
}
