package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/platform/metrics"
)

// StatusApplier is the store operation the status consumer drives.
type StatusApplier interface {
	ApplyStatus(ctx context.Context, id int64, status bookingDomain.BookingStatus) (bookingDomain.ApplyResult, error)
}

// BookingStatusConsumer applies booking_stat commands to the booking store. Authorization
// and the conflict pre-check happen before publish; the store enforces the overlap
// invariant on ACCEPTED writes. Replays are harmless.
type BookingStatusConsumer struct {
	store   StatusApplier
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewBookingStatusConsumer creates a new BookingStatusConsumer. m may be nil.
func NewBookingStatusConsumer(store StatusApplier, m *metrics.Metrics, logger *zap.Logger) *BookingStatusConsumer {
	return &BookingStatusConsumer{store: store, metrics: m, logger: logger}
}

// Register subscribes the consumer to booking_stat.
func (c *BookingStatusConsumer) Register(bus *Bus) {
	bus.Subscribe(TopicBookingStatus, "booking-status-applier", c.Handle)
}

// Handle applies one status command.
func (c *BookingStatusConsumer) Handle(ctx context.Context, msg Message) error {
	evt, err := ParseStatusChanged(msg.Value)
	if err != nil {
		return fmt.Errorf("failed to parse status event: %w", err)
	}
	status := bookingDomain.BookingStatus(evt.Status)

	result, err := c.store.ApplyStatus(ctx, evt.BookingID, status)
	if err != nil {
		return fmt.Errorf("failed to apply %s to booking %d: %w", status, evt.BookingID, err)
	}
	if c.metrics != nil {
		c.metrics.StatusApplied.WithLabelValues(string(status), string(result)).Inc()
	}

	fields := []zap.Field{
		zap.Int64("booking_id", evt.BookingID),
		zap.String("status", string(status)),
		zap.String("result", string(result)),
	}
	switch result {
	case bookingDomain.ApplyApplied:
		c.logger.Info("booking status applied", fields...)
	case bookingDomain.ApplyConflict:
		c.logger.Warn("accept lost to an overlapping accepted booking", fields...)
	case bookingDomain.ApplyNotFound:
		c.logger.Warn("status event for unknown booking", fields...)
	default:
		c.logger.Debug("booking status unchanged", fields...)
	}
	return nil
}
