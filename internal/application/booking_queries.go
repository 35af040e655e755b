package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
)

// BookingDTO is the response representation of a booking. Property fields are
// filled in by listings that join the booking with its property.
type BookingDTO struct {
	BookingID         int64     `json:"booking_id"`
	TravelerID        int64     `json:"traveler_id"`
	PropertyID        int64     `json:"property_id"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Guests            *int      `json:"guests,omitempty"`
	Status            string    `json:"status"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	PropertyName      string    `json:"property_name,omitempty"`
	FirstImageURL     string    `json:"first_image_url,omitempty"`
	NightlyPrice      float64   `json:"nightly_price,omitempty"`
	Nights            int       `json:"nights,omitempty"`
	TotalPrice        float64   `json:"total_price,omitempty"`
}

// TravelerStatusDTO groups a traveler's bookings by status.
type TravelerStatusDTO struct {
	AcceptedRequests []BookingDTO `json:"acceptedRequests"`
	CanceledRequests []BookingDTO `json:"canceledRequests"`
	PendingRequests  []BookingDTO `json:"pendingRequests"`
}

// OwnerDashboardDTO summarises an owner's properties and bookings.
type OwnerDashboardDTO struct {
	TotalProps       int64        `json:"total_props"`
	Incoming         int64        `json:"incoming"`
	RecentRequests   []BookingDTO `json:"recentRequests"`
	PreviousBookings []BookingDTO `json:"previousBookings"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ConflictPairDTO is two accepted bookings of one property whose stays overlap.
type ConflictPairDTO struct {
	First  BookingDTO `json:"first"`
	Second BookingDTO `json:"second"`
}

// enrichment selects which property details a listing joins in.
type enrichment struct {
	image   bool
	pricing bool
}

// GetTravelerHistory returns the traveler's completed stays: accepted bookings whose
// checkout day is before today. Bookings whose property no longer exists are skipped.
func (s *BookingService) GetTravelerHistory(ctx context.Context, travelerID int64) ([]BookingDTO, error) {
	accepted := bookingDomain.StatusAccepted
	bookings, err := s.repo.ListByTraveler(ctx, travelerID, bookingDomain.ListFilter{Status: &accepted})
	if err != nil {
		return nil, fmt.Errorf("failed to list traveler bookings: %w", err)
	}

	today := s.today()
	past := make([]*bookingDomain.Booking, 0, len(bookings))
	for _, bk := range bookings {
		if bk.IsPast(today) {
			past = append(past, bk)
		}
	}
	return s.enrich(ctx, past, enrichment{image: true})
}

// GetTravelerStatus buckets the traveler's bookings. Accepted and pending buckets only
// hold stays starting today or later; the cancelled bucket holds all of them.
func (s *BookingService) GetTravelerStatus(ctx context.Context, travelerID int64) (*TravelerStatusDTO, error) {
	bookings, err := s.repo.ListByTraveler(ctx, travelerID, bookingDomain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list traveler bookings: %w", err)
	}

	dtos, err := s.enrich(ctx, bookings, enrichment{image: true, pricing: true})
	if err != nil {
		return nil, err
	}

	today := s.today().Format(bookingDomain.DateLayout)
	out := &TravelerStatusDTO{
		AcceptedRequests: []BookingDTO{},
		CanceledRequests: []BookingDTO{},
		PendingRequests:  []BookingDTO{},
	}
	for _, dto := range dtos {
		upcoming := dto.StartDate >= today
		switch bookingDomain.BookingStatus(dto.Status) {
		case bookingDomain.StatusAccepted:
			if upcoming {
				out.AcceptedRequests = append(out.AcceptedRequests, dto)
			}
		case bookingDomain.StatusCancelled:
			out.CanceledRequests = append(out.CanceledRequests, dto)
		case bookingDomain.StatusPending:
			if upcoming {
				out.PendingRequests = append(out.PendingRequests, dto)
			}
		}
	}
	return out, nil
}

// ListIncoming returns bookings on the owner's properties, newest first.
func (s *BookingService) ListIncoming(ctx context.Context, ownerID int64, status *bookingDomain.BookingStatus) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByPropertyOwner(ctx, ownerID, bookingDomain.ListFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming bookings: %w", err)
	}
	return s.enrich(ctx, bookings, enrichment{})
}

// GetOwnerDashboard returns the owner's property count, pending count, upcoming
// requests and past or decided bookings.
func (s *BookingService) GetOwnerDashboard(ctx context.Context, ownerID int64) (*OwnerDashboardDTO, error) {
	totalProps, err := s.properties.CountByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByPropertyOwner(ctx, ownerID, bookingDomain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	dtos, err := s.enrich(ctx, bookings, enrichment{})
	if err != nil {
		return nil, err
	}

	today := s.today().Format(bookingDomain.DateLayout)
	out := &OwnerDashboardDTO{
		TotalProps:       totalProps,
		RecentRequests:   []BookingDTO{},
		PreviousBookings: []BookingDTO{},
	}
	for _, dto := range dtos {
		status := bookingDomain.BookingStatus(dto.Status)
		if status == bookingDomain.StatusPending {
			out.Incoming++
		}
		if dto.StartDate >= today {
			out.RecentRequests = append(out.RecentRequests, dto)
		}
		if dto.StartDate < today || status != bookingDomain.StatusPending {
			out.PreviousBookings = append(out.PreviousBookings, dto)
		}
	}
	return out, nil
}

// ListAllBookings returns one page of bookings across all properties. A nil status lists every status.
func (s *BookingService) ListAllBookings(ctx context.Context, status *bookingDomain.BookingStatus, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, bookingDomain.ListFilter{Status: status}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// AuditPropertyConflicts reports every pair of accepted bookings of propertyID whose stays
// overlap. An empty slice means the property is not double-booked.
func (s *BookingService) AuditPropertyConflicts(ctx context.Context, propertyID int64) ([]ConflictPairDTO, error) {
	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list property bookings: %w", err)
	}

	pairs := bookingDomain.FindConflicts(bookings)
	out := make([]ConflictPairDTO, len(pairs))
	for i, p := range pairs {
		out[i] = ConflictPairDTO{First: toBookingDTO(p[0]), Second: toBookingDTO(p[1])}
	}
	if len(out) > 0 {
		s.logger.Warn("accepted bookings overlap",
			zap.Int64("property_id", propertyID),
			zap.Int("pairs", len(out)),
		)
	}
	return out, nil
}

// enrich joins bookings with their properties and drops bookings whose property is gone.
func (s *BookingService) enrich(ctx context.Context, bookings []*bookingDomain.Booking, opts enrichment) ([]BookingDTO, error) {
	out := make([]BookingDTO, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	ids := propertyIDs(bookings)
	props, err := s.properties.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var firstImages map[int64]string
	if opts.image {
		if firstImages, err = s.images.FirstURLs(ctx, ids); err != nil {
			return nil, err
		}
	}

	for _, bk := range bookings {
		prop, ok := props[bk.PropertyID()]
		if !ok {
			continue
		}
		dto := toBookingDTO(bk)
		dto.PropertyName = prop.Name()
		if opts.image {
			dto.FirstImageURL = firstImages[bk.PropertyID()]
		}
		if opts.pricing {
			if err := s.price(&dto, bk, prop); err != nil {
				return nil, err
			}
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *BookingService) price(dto *BookingDTO, bk *bookingDomain.Booking, prop *propertyDomain.Property) error {
	quote, err := s.pricing.Calculate(bookingDomain.PricingParams{
		Dates:              bk.Dates(),
		PricePerNightCents: prop.PricePerNightCents(),
	})
	if err != nil {
		return fmt.Errorf("failed to price booking %d: %w", bk.ID(), err)
	}
	dto.NightlyPrice = bookingDomain.Amount(prop.PricePerNightCents())
	dto.Nights = quote.Nights
	dto.TotalPrice = bookingDomain.Amount(quote.TotalCents)
	return nil
}

// today is the current UTC calendar day.
func (s *BookingService) today() time.Time {
	return bookingDomain.NormalizeDate(s.now())
}

func propertyIDs(bookings []*bookingDomain.Booking) []int64 {
	seen := make(map[int64]struct{}, len(bookings))
	ids := make([]int64, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.PropertyID()]; ok {
			continue
		}
		seen[bk.PropertyID()] = struct{}{}
		ids = append(ids, bk.PropertyID())
	}
	return ids
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		BookingID:  bk.ID(),
		TravelerID: bk.TravelerID(),
		PropertyID: bk.PropertyID(),
		StartDate:  bk.Dates().StartString(),
		EndDate:    bk.Dates().EndString(),
		Guests:     bk.Guests(),
		Status:     string(bk.Status()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}
