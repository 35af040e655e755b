// Package sequence issues per-entity integer IDs that emulate auto-increment.
package sequence

import "context"

// Counter names one independent ID sequence.
type Counter string

const (
	CounterBooking  Counter = "bookingid"
	CounterProperty Counter = "propertyid"
	CounterImage    Counter = "imageid"
	CounterFavorite Counter = "favoriteid"
)

// Allocator hands out strictly increasing IDs per counter. Next must be atomic across
// concurrent callers and processes, must never return a value twice, and returns 1 on
// the first call for a counter.
type Allocator interface {
	Next(ctx context.Context, counter Counter) (int64, error)
}
