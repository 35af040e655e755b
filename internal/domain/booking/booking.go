package booking

import (
	"time"

	"github.com/stayloop/service-booking/internal/platform/domain"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         int64
	travelerID int64
	propertyID int64
	dates      DateRange
	guests     *int
	status     BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=PENDING. The id must come from
// the sequence allocator.
func NewBooking(id, travelerID, propertyID int64, dates DateRange, guests *int) (*Booking, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("booking ID must be allocated")
	}
	if travelerID <= 0 {
		return nil, domain.NewValidationError("traveler ID is required")
	}
	if propertyID <= 0 {
		return nil, domain.NewValidationError("property_id is required")
	}
	if !dates.Start.Before(dates.End) {
		return nil, domain.NewValidationError("start_date must be before end_date")
	}
	if guests != nil && *guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         id,
		travelerID: travelerID,
		propertyID: propertyID,
		dates:      dates,
		guests:     guests,
		status:     StatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, travelerID, propertyID int64,
	dates DateRange,
	guests *int,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		travelerID: travelerID,
		propertyID: propertyID,
		dates:      dates,
		guests:     guests,
		status:     status,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() int64               { return b.id }
func (b *Booking) TravelerID() int64       { return b.travelerID }
func (b *Booking) PropertyID() int64       { return b.propertyID }
func (b *Booking) Dates() DateRange        { return b.dates }
func (b *Booking) StartDate() time.Time    { return b.dates.Start }
func (b *Booking) EndDate() time.Time      { return b.dates.End }
func (b *Booking) Guests() *int            { return b.guests }
func (b *Booking) Status() BookingStatus   { return b.status }
func (b *Booking) Version() int64          { return b.version }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }

// --- Behavior ---

// Decide checks that target is reachable from the current status. It reports
// changed=false when the booking already has the target status, which callers
// treat as an idempotent success. The aggregate itself is not mutated: status
// changes are applied by the status consumer.
func (b *Booking) Decide(target BookingStatus) (changed bool, err error) {
	if b.status == target {
		return false, nil
	}
	if !b.status.CanTransitionTo(target) {
		return false, domain.NewInvalidStateError(string(b.status), string(target))
	}
	return true, nil
}

// IsUpcoming reports whether the stay starts on or after day.
func (b *Booking) IsUpcoming(day time.Time) bool {
	return !b.dates.Start.Before(NormalizeDate(day))
}

// IsPast reports whether the stay ended before day.
func (b *Booking) IsPast(day time.Time) bool {
	return b.dates.End.Before(NormalizeDate(day))
}
