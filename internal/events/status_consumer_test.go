package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/platform/metrics"
)

type applyCall struct {
	id     int64
	status bookingDomain.BookingStatus
}

// fakeApplier keeps statuses in memory and follows the store's transition rules.
type fakeApplier struct {
	mu       sync.Mutex
	statuses map[int64]bookingDomain.BookingStatus
	calls    []applyCall
	err      error
}

func (f *fakeApplier) ApplyStatus(_ context.Context, id int64, status bookingDomain.BookingStatus) (bookingDomain.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, applyCall{id, status})
	if f.err != nil {
		return "", f.err
	}
	current, ok := f.statuses[id]
	if !ok {
		return bookingDomain.ApplyNotFound, nil
	}
	if !current.CanTransitionTo(status) {
		return bookingDomain.ApplyUnchanged, nil
	}
	f.statuses[id] = status
	return bookingDomain.ApplyApplied, nil
}

func TestParseStatusChanged(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantID  int64
		wantErr bool
	}{
		{"numeric id", `{"booking_id":42,"status":"ACCEPTED","owner_id":3}`, 42, false},
		{"string id", `{"booking_id":"42","status":"CANCELLED"}`, 42, false},
		{"lowercase status", `{"booking_id":42,"status":"accepted"}`, 42, false},
		{"pending is not a command", `{"booking_id":42,"status":"PENDING"}`, 0, true},
		{"unknown status", `{"booking_id":42,"status":"DELIVERED"}`, 0, true},
		{"missing id", `{"status":"ACCEPTED"}`, 0, true},
		{"fractional id", `{"booking_id":4.5,"status":"ACCEPTED"}`, 0, true},
		{"non numeric string id", `{"booking_id":"abc","status":"ACCEPTED"}`, 0, true},
		{"negative id", `{"booking_id":-1,"status":"ACCEPTED"}`, 0, true},
		{"not json", `booking 42 accepted`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := ParseStatusChanged([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, evt.BookingID)
		})
	}
}

func TestBookingStatusConsumer_AppliesIdempotently(t *testing.T) {
	store := &fakeApplier{statuses: map[int64]bookingDomain.BookingStatus{1: bookingDomain.StatusPending}}
	m := metrics.New()
	consumer := NewBookingStatusConsumer(store, m, zaptest.NewLogger(t))
	ctx := context.Background()

	msg := Message{Topic: TopicBookingStatus, Key: "1", Value: []byte(`{"booking_id":1,"status":"ACCEPTED","owner_id":9}`)}
	require.NoError(t, consumer.Handle(ctx, msg))
	require.NoError(t, consumer.Handle(ctx, msg))

	assert.Equal(t, bookingDomain.StatusAccepted, store.statuses[1])
	assert.Len(t, store.calls, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusApplied.WithLabelValues("ACCEPTED", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusApplied.WithLabelValues("ACCEPTED", "unchanged")))
}

func TestBookingStatusConsumer_UnknownBookingIsNotAnError(t *testing.T) {
	store := &fakeApplier{statuses: map[int64]bookingDomain.BookingStatus{}}
	consumer := NewBookingStatusConsumer(store, nil, zaptest.NewLogger(t))

	err := consumer.Handle(context.Background(), Message{Value: []byte(`{"booking_id":"77","status":"CANCELLED"}`)})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)
	assert.Equal(t, applyCall{77, bookingDomain.StatusCancelled}, store.calls[0])
}

func TestBookingStatusConsumer_Errors(t *testing.T) {
	store := &fakeApplier{err: errors.New("db down")}
	consumer := NewBookingStatusConsumer(store, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.Error(t, consumer.Handle(ctx, Message{Value: []byte(`{"booking_id":1,"status":"ACCEPTED"}`)}))
	assert.ErrorIs(t, consumer.Handle(ctx, Message{Value: []byte(`{}`)}), ErrMalformedEvent)
	assert.Len(t, store.calls, 1, "malformed payloads never reach the store")
}

func TestBookingStatusConsumer_ThroughBus(t *testing.T) {
	store := &fakeApplier{statuses: map[int64]bookingDomain.BookingStatus{5: bookingDomain.StatusAccepted}}
	bus := NewBus(nil, zaptest.NewLogger(t))
	NewBookingStatusConsumer(store, nil, zaptest.NewLogger(t)).Register(bus)
	NewBookingRequestLogger(zaptest.NewLogger(t)).Register(bus)

	bus.Dispatch(context.Background(), Message{Topic: TopicBookingStatus, Value: []byte(`{"booking_id":5,"status":"CANCELLED"}`)})
	bus.Dispatch(context.Background(), Message{Topic: TopicBookingRequested, Value: []byte(`{"booking_id":6,"status":"PENDING"}`)})

	assert.Equal(t, bookingDomain.StatusCancelled, store.statuses[5])
	assert.Equal(t, []string{TopicBookingRequested, TopicBookingStatus}, bus.Topics())
}
