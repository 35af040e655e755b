package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stayloop/service-booking/internal/platform/metrics"
)

func TestBus_DispatchIsolatesHandlerFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	m := metrics.New()
	bus := NewBus(m, zap.New(core))

	var calls []string
	bus.Subscribe(TopicBookingStatus, "fails", func(context.Context, Message) error {
		calls = append(calls, "fails")
		return errors.New("store down")
	})
	bus.Subscribe(TopicBookingStatus, "panics", func(context.Context, Message) error {
		calls = append(calls, "panics")
		panic("boom")
	})
	bus.Subscribe(TopicBookingStatus, "works", func(context.Context, Message) error {
		calls = append(calls, "works")
		return nil
	})
	bus.Subscribe(TopicBookingRequested, "other-topic", func(context.Context, Message) error {
		calls = append(calls, "other-topic")
		return nil
	})

	require.NotPanics(t, func() {
		bus.Dispatch(context.Background(), Message{Topic: TopicBookingStatus, Key: "1"})
	})

	assert.Equal(t, []string{"fails", "panics", "works"}, calls)
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HandlerFailures.WithLabelValues(TopicBookingStatus)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsConsumed.WithLabelValues(TopicBookingStatus)))
}

func TestBus_Topics(t *testing.T) {
	bus := NewBus(nil, zaptest.NewLogger(t))
	assert.Empty(t, bus.Topics())

	noop := func(context.Context, Message) error { return nil }
	bus.Subscribe(TopicBookingStatus, "a", noop)
	bus.Subscribe(TopicBookingRequested, "b", noop)
	bus.Subscribe(TopicBookingStatus, "c", noop)

	assert.Equal(t, []string{TopicBookingRequested, TopicBookingStatus}, bus.Topics())
}

func TestMemoryChannel_DeliversInOrderWithHeaders(t *testing.T) {
	bus := NewBus(nil, zaptest.NewLogger(t))
	ch := NewMemoryChannel(bus, 16, nil, zaptest.NewLogger(t))

	var (
		mu   sync.Mutex
		got  []BookingStatusChangedEvent
		hdrs []map[string]string
	)
	bus.Subscribe(TopicBookingStatus, "collect", func(_ context.Context, msg Message) error {
		evt, err := ParseStatusChanged(msg.Value)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt)
		hdrs = append(hdrs, msg.Headers)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()

	require.NoError(t, ch.Publish(ctx, TopicBookingStatus, "7", BookingStatusChangedEvent{BookingID: 7, Status: "ACCEPTED", OwnerID: 1}))
	require.NoError(t, ch.Publish(ctx, TopicBookingStatus, "7", BookingStatusChangedEvent{BookingID: 7, Status: "CANCELLED", OwnerID: 1}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "ACCEPTED", got[0].Status)
	assert.Equal(t, "CANCELLED", got[1].Status)
	assert.Equal(t, EventTypeBookingStatusChanged, hdrs[0][HeaderEventType])
	assert.NotEmpty(t, hdrs[0][HeaderEventID])
	assert.NotEqual(t, hdrs[0][HeaderEventID], hdrs[1][HeaderEventID])
}

func TestMemoryChannel_PublishAfterCloseFails(t *testing.T) {
	m := metrics.New()
	ch := NewMemoryChannel(NewBus(nil, zaptest.NewLogger(t)), 1, m, zaptest.NewLogger(t))
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	err := ch.Publish(context.Background(), TopicBookingStatus, "1", BookingStatusChangedEvent{BookingID: 1, Status: "ACCEPTED"})
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailures.WithLabelValues(TopicBookingStatus)))
}

func TestMemoryChannel_PublishHonoursContextWhenFull(t *testing.T) {
	ch := NewMemoryChannel(NewBus(nil, zaptest.NewLogger(t)), 1, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, ch.Publish(ctx, TopicBookingRequested, "1", BookingRequestedEvent{BookingID: 1}))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := ch.Publish(short, TopicBookingRequested, "2", BookingRequestedEvent{BookingID: 2})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryChannel_RunDrainsOnClose(t *testing.T) {
	bus := NewBus(nil, zaptest.NewLogger(t))
	ch := NewMemoryChannel(bus, 4, nil, zaptest.NewLogger(t))

	delivered := 0
	bus.Subscribe(TopicBookingRequested, "count", func(context.Context, Message) error {
		delivered++
		return nil
	})

	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, ch.Publish(ctx, TopicBookingRequested, "k", BookingRequestedEvent{BookingID: i}))
	}
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Run(ctx))
	assert.Equal(t, 3, delivered)
}
