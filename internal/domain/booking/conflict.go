package booking

import (
	"context"
	"fmt"
)

// OverlapCounter counts ACCEPTED bookings of a property, other than excludeID, whose
// range overlaps [dates.Start, dates.End).
type OverlapCounter interface {
	CountAcceptedOverlaps(ctx context.Context, propertyID, excludeID int64, dates DateRange) (int64, error)
}

// ConflictChecker decides whether accepting a booking would double-book its property.
// It always reads committed store state; nothing is cached between calls.
type ConflictChecker struct {
	store OverlapCounter
}

// NewConflictChecker creates a new ConflictChecker.
func NewConflictChecker(store OverlapCounter) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// HasConflict returns true if another ACCEPTED booking of propertyID overlaps dates.
func (c *ConflictChecker) HasConflict(ctx context.Context, propertyID, candidateID int64, dates DateRange) (bool, error) {
	n, err := c.store.CountAcceptedOverlaps(ctx, propertyID, candidateID, dates)
	if err != nil {
		return false, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return n > 0, nil
}

// FindConflicts returns every pair of ACCEPTED bookings in bookings that overlap on the
// same property. An empty result means the double-booking invariant holds.
func FindConflicts(bookings []*Booking) [][2]*Booking {
	byProperty := make(map[int64][]*Booking)
	for _, b := range bookings {
		if b.Status() == StatusAccepted {
			byProperty[b.PropertyID()] = append(byProperty[b.PropertyID()], b)
		}
	}

	var conflicts [][2]*Booking
	for _, accepted := range byProperty {
		for i := 0; i < len(accepted); i++ {
			for j := i + 1; j < len(accepted); j++ {
				if accepted[i].Dates().Overlaps(accepted[j].Dates()) {
					conflicts = append(conflicts, [2]*Booking{accepted[i], accepted[j]})
				}
			}
		}
	}
	return conflicts
}
