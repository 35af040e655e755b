package booking

import (
	"context"
)

// ApplyResult describes what ApplyStatus did to the stored booking.
type ApplyResult string

const (
	// ApplyApplied means the status changed.
	ApplyApplied ApplyResult = "applied"
	// ApplyUnchanged means the booking already had the status, or the transition is not allowed.
	ApplyUnchanged ApplyResult = "unchanged"
	// ApplyConflict means an ACCEPTED write lost to an overlapping ACCEPTED booking.
	ApplyConflict ApplyResult = "conflict"
	// ApplyNotFound means no booking has the ID.
	ApplyNotFound ApplyResult = "not_found"
)

// ListFilter narrows booking listings. A nil Status matches every status.
type ListFilter struct {
	Status *BookingStatus
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	OverlapCounter

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// ListByTraveler retrieves a traveler's bookings, newest first.
	ListByTraveler(ctx context.Context, travelerID int64, filter ListFilter) ([]*Booking, error)

	// ListByPropertyOwner retrieves bookings on properties owned by ownerID, newest first.
	ListByPropertyOwner(ctx context.Context, ownerID int64, filter ListFilter) ([]*Booking, error)

	// ListByProperty retrieves every booking of a property regardless of status, newest first.
	ListByProperty(ctx context.Context, propertyID int64) ([]*Booking, error)

	// ApplyStatus moves a booking to status. Unknown IDs are not an error. An ACCEPTED
	// write only succeeds from PENDING and only when no overlapping ACCEPTED booking exists.
	ApplyStatus(ctx context.Context, id int64, status BookingStatus) (ApplyResult, error)

	// ListAll retrieves bookings across all properties, newest first, one page at a time.
	// The returned total counts every booking matching filter.
	ListAll(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
