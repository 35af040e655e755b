package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/service-booking/internal/domain/sequence"
)

func TestSQLSequenceAllocator_StartsAtOneAndIncrements(t *testing.T) {
	alloc := NewSQLSequenceAllocator(newTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := alloc.Next(ctx, sequence.CounterBooking)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := alloc.Next(ctx, sequence.CounterProperty)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "counters are independent")
}

func TestSQLSequenceAllocator_Concurrent(t *testing.T) {
	alloc := NewSQLSequenceAllocator(newTestDB(t))
	ctx := context.Background()

	const n = 50
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := alloc.Next(ctx, sequence.CounterBooking)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id, "ids must be unique and gap-free")
	}
}

func TestRedisSequenceAllocator(t *testing.T) {
	client, mock := redismock.NewClientMock()
	alloc := NewRedisSequenceAllocator(client)
	ctx := context.Background()

	mock.ExpectIncr("booking:seq:bookingid").SetVal(1)
	mock.ExpectIncr("booking:seq:bookingid").SetVal(2)
	mock.ExpectIncr("booking:seq:imageid").SetErr(errors.New("connection refused"))

	got, err := alloc.Next(ctx, sequence.CounterBooking)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = alloc.Next(ctx, sequence.CounterBooking)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	_, err = alloc.Next(ctx, sequence.CounterImage)
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}
