package booking

import (
	"fmt"
	"time"

	"github.com/stayloop/service-booking/internal/platform/domain"
)

// DateLayout is the wire format of a stay date.
const DateLayout = "2006-01-02"

// instantLayout is an ISO 8601 UTC timestamp with milliseconds.
const instantLayout = "2006-01-02T15:04:05.000Z"

// DateRange is a stay over the half-open interval [Start, End). Both bounds are
// UTC midnights.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NormalizeDate drops the time-of-day, keeping the calendar date as seen in UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return NormalizeDate(t), nil
}

// NewDateRange normalizes both bounds and requires start < end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: NormalizeDate(start), End: NormalizeDate(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, domain.NewValidationError("start_date must be before end_date")
	}
	return r, nil
}

// ParseDateRange parses and validates a pair of wire dates.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, domain.NewValidationError(err.Error())
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, domain.NewValidationError(err.Error())
	}
	return NewDateRange(s, e)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Ranges that only touch at a boundary do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return other.End.After(r.Start) && other.Start.Before(r.End)
}

// Within reports whether r lies entirely inside [from, until]. A nil bound is open.
func (r DateRange) Within(from, until *time.Time) bool {
	if from != nil && r.Start.Before(NormalizeDate(*from)) {
		return false
	}
	if until != nil && r.End.After(NormalizeDate(*until)) {
		return false
	}
	return true
}

// Nights returns the number of nights billed, never less than one.
func (r DateRange) Nights() int {
	nights := int(r.End.Sub(r.Start).Hours() / 24)
	if r.End.Sub(r.Start)%(24*time.Hour) != 0 {
		nights++
	}
	if nights < 1 {
		return 1
	}
	return nights
}

// StartString formats the start bound for the wire.
func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }

// EndString formats the end bound for the wire.
func (r DateRange) EndString() string { return r.End.Format(DateLayout) }

// StartInstantString renders Start as a UTC midnight timestamp.
func (r DateRange) StartInstantString() string {
	return r.Start.Format(instantLayout)
}

// EndOfDayString renders End as the last millisecond of that day.
func (r DateRange) EndOfDayString() string {
	return r.End.Add(24*time.Hour - time.Millisecond).Format(instantLayout)
}
