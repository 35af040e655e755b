//go:build integration

package main_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/stayloop/service-booking/internal/application"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	bookingEvents "github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/platform/domain"
)

// TestAcceptFlow_OverKafka creates a booking, accepts it and waits for the status
// consumer to apply the decision that travelled through booking_stat.
func TestAcceptFlow_OverKafka(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer func() { _ = stack.Channel.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Channel.Run(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	const ownerID, travelerID int64 = 501, 601
	prop, err := stack.Props.CreateProperty(ctx, ownerID, application.PropertyRequest{
		Name:               "Integration Chalet",
		PricePerNightCents: 20000,
	})
	require.NoError(t, err)

	first, err := stack.Service.CreateBooking(ctx, travelerID, application.CreateBookingRequest{
		PropertyID: prop.PropertyID, StartDate: "2031-01-10", EndDate: "2031-01-15",
	})
	require.NoError(t, err)
	second, err := stack.Service.CreateBooking(ctx, travelerID+1, application.CreateBookingRequest{
		PropertyID: prop.PropertyID, StartDate: "2031-01-12", EndDate: "2031-01-14",
	})
	require.NoError(t, err)

	requested := consumeOne(t, infra.KafkaBrokers, bookingEvents.TopicBookingRequested, first.InsertID, 15*time.Second)
	assert.Equal(t, "PENDING", gjson.GetBytes(requested.Value, "status").String())

	res, err := stack.Service.AcceptBooking(ctx, ownerID, first.InsertID)
	require.NoError(t, err)
	assert.Equal(t, application.MsgBookingAccepted, res.Message)

	bk := waitForBookingStatus(t, stack.Bookings, first.InsertID, bookingDomain.StatusAccepted, 15*time.Second)
	assert.Equal(t, int64(2), bk.Version())

	stat := consumeOne(t, infra.KafkaBrokers, bookingEvents.TopicBookingStatus, first.InsertID, 15*time.Second)
	assert.Equal(t, "ACCEPTED", gjson.GetBytes(stat.Value, "status").String())
	assert.Equal(t, ownerID, gjson.GetBytes(stat.Value, "owner_id").Int())
	headers := map[string]string{}
	for _, h := range stat.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, bookingEvents.EventTypeBookingStatusChanged, headers[bookingEvents.HeaderEventType])
	assert.NotEmpty(t, headers[bookingEvents.HeaderEventID])

	_, err = stack.Service.AcceptBooking(ctx, ownerID, second.InsertID)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

// TestConcurrentAccepts_Postgres races conditional accepts for overlapping stays
// directly against Postgres; exactly one may win.
func TestConcurrentAccepts_Postgres(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer func() { _ = stack.Channel.Close() }()
	ctx := context.Background()

	prop, err := stack.Props.CreateProperty(ctx, 1, application.PropertyRequest{Name: "Contended Loft"})
	require.NoError(t, err)

	const contenders = 12
	ids := make([]int64, contenders)
	for i := range ids {
		dates, err := bookingDomain.ParseDateRange("2031-06-01", "2031-06-08")
		require.NoError(t, err)
		bk, err := bookingDomain.NewBooking(int64(9000+i), int64(100+i), prop.PropertyID, dates, nil)
		require.NoError(t, err)
		require.NoError(t, stack.Bookings.Save(ctx, bk))
		ids[i] = bk.ID()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = map[bookingDomain.ApplyResult]int{}
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			res, err := stack.Bookings.ApplyStatus(ctx, id, bookingDomain.StatusAccepted)
			assert.NoError(t, err)
			mu.Lock()
			results[res]++
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, results[bookingDomain.ApplyApplied])
	assert.Equal(t, contenders-1, results[bookingDomain.ApplyConflict])

	all, err := stack.Bookings.ListByProperty(ctx, prop.PropertyID)
	require.NoError(t, err)
	assert.Empty(t, bookingDomain.FindConflicts(all))
}

// TestConcurrentCreates_Postgres issues parallel creates over the pooled Postgres
// connection; every booking must get its own ID from an unbroken sequence.
func TestConcurrentCreates_Postgres(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer func() { _ = stack.Channel.Close() }()
	ctx := context.Background()

	prop, err := stack.Props.CreateProperty(ctx, 1, application.PropertyRequest{Name: "Busy Cabin"})
	require.NoError(t, err)

	const creators = 50
	ids := make([]int64, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := stack.Service.CreateBooking(ctx, int64(2000+i), application.CreateBookingRequest{
				PropertyID: prop.PropertyID, StartDate: "2031-09-01", EndDate: "2031-09-04",
			})
			if assert.NoError(t, err) {
				ids[i] = res.InsertID
			}
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	want := make([]int64, creators)
	for i := range want {
		want[i] = int64(i + 1)
	}
	assert.Equal(t, want, ids)

	all, err := stack.Bookings.ListByProperty(ctx, prop.PropertyID)
	require.NoError(t, err)
	assert.Len(t, all, creators)
}
