package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
)

// Topics carried by the booking event channel.
const (
	TopicBookingRequested = "booking_req"
	TopicBookingStatus    = "booking_stat"
)

// Event types written to the event_type header.
const (
	EventTypeBookingRequested     = "booking.requested"
	EventTypeBookingStatusChanged = "booking.status_changed"
)

// Header keys set on every published message.
const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
)

// Message is one delivered event, independent of the transport that carried it.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Handler processes one message. Errors are logged by the Bus and never redelivered.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends a payload to a topic. It blocks until the transport accepts the
// message and fails loudly when it cannot.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Channel is a Publisher that also runs the loop delivering consumed messages to its Bus.
type Channel interface {
	Publisher
	Run(ctx context.Context) error
	Close() error
}

// Typed is implemented by payloads that name their event type.
type Typed interface {
	EventType() string
}

// BookingRequestedEvent announces a new PENDING booking.
type BookingRequestedEvent struct {
	BookingID  int64  `json:"booking_id"`
	Status     string `json:"status"`
	PropertyID int64  `json:"property_id"`
	TravelerID int64  `json:"traveler_id"`
}

// EventType implements Typed.
func (BookingRequestedEvent) EventType() string { return EventTypeBookingRequested }

// BookingStatusChangedEvent commands the status consumer to move a booking.
type BookingStatusChangedEvent struct {
	BookingID int64  `json:"booking_id"`
	Status    string `json:"status"`
	OwnerID   int64  `json:"owner_id"`
}

// EventType implements Typed.
func (BookingStatusChangedEvent) EventType() string { return EventTypeBookingStatusChanged }

// ErrMalformedEvent marks payloads that can never be applied.
var ErrMalformedEvent = errors.New("malformed event")

// ParseStatusChanged extracts {booking_id, status} from a booking_stat payload.
// booking_id may be a JSON number or a numeric string; status must be ACCEPTED or CANCELLED.
func ParseStatusChanged(payload []byte) (BookingStatusChangedEvent, error) {
	if !gjson.ValidBytes(payload) {
		return BookingStatusChangedEvent{}, fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}

	id, err := parseBookingID(gjson.GetBytes(payload, "booking_id"))
	if err != nil {
		return BookingStatusChangedEvent{}, err
	}

	status, err := bookingDomain.ParseBookingStatus(gjson.GetBytes(payload, "status").String())
	if err != nil {
		return BookingStatusChangedEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if status == bookingDomain.StatusPending {
		return BookingStatusChangedEvent{}, fmt.Errorf("%w: PENDING is not a status command", ErrMalformedEvent)
	}

	return BookingStatusChangedEvent{
		BookingID: id,
		Status:    string(status),
		OwnerID:   gjson.GetBytes(payload, "owner_id").Int(),
	}, nil
}

// ParseBookingRequested extracts a booking_req payload.
func ParseBookingRequested(payload []byte) (BookingRequestedEvent, error) {
	if !gjson.ValidBytes(payload) {
		return BookingRequestedEvent{}, fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}
	id, err := parseBookingID(gjson.GetBytes(payload, "booking_id"))
	if err != nil {
		return BookingRequestedEvent{}, err
	}
	return BookingRequestedEvent{
		BookingID:  id,
		Status:     gjson.GetBytes(payload, "status").String(),
		PropertyID: gjson.GetBytes(payload, "property_id").Int(),
		TravelerID: gjson.GetBytes(payload, "traveler_id").Int(),
	}, nil
}

func parseBookingID(res gjson.Result) (int64, error) {
	var id int64
	switch res.Type {
	case gjson.Number:
		if res.Num != float64(int64(res.Num)) {
			return 0, fmt.Errorf("%w: booking_id %s is not an integer", ErrMalformedEvent, res.Raw)
		}
		id = res.Int()
	case gjson.String:
		parsed, err := strconv.ParseInt(res.Str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: booking_id %q is not an integer", ErrMalformedEvent, res.Str)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("%w: booking_id missing", ErrMalformedEvent)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: booking_id must be positive", ErrMalformedEvent)
	}
	return id, nil
}
