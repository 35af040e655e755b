package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BookingRequestLogger records booking_req events. Nothing downstream acts on new
// requests yet; this is where that automation would subscribe.
type BookingRequestLogger struct {
	logger *zap.Logger
}

// NewBookingRequestLogger creates a new BookingRequestLogger.
func NewBookingRequestLogger(logger *zap.Logger) *BookingRequestLogger {
	return &BookingRequestLogger{logger: logger}
}

// Register subscribes the logger to booking_req.
func (l *BookingRequestLogger) Register(bus *Bus) {
	bus.Subscribe(TopicBookingRequested, "booking-request-logger", l.Handle)
}

// Handle logs one booking request.
func (l *BookingRequestLogger) Handle(_ context.Context, msg Message) error {
	evt, err := ParseBookingRequested(msg.Value)
	if err != nil {
		return fmt.Errorf("failed to parse booking request: %w", err)
	}
	l.logger.Info("booking requested",
		zap.Int64("booking_id", evt.BookingID),
		zap.Int64("property_id", evt.PropertyID),
		zap.Int64("traveler_id", evt.TravelerID),
		zap.String("event_id", msg.Headers[HeaderEventID]),
	)
	return nil
}
