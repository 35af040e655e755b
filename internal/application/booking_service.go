package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	imageDomain "github.com/stayloop/service-booking/internal/domain/image"
	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
	"github.com/stayloop/service-booking/internal/domain/sequence"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/platform/domain"
	"github.com/stayloop/service-booking/internal/platform/metrics"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	PropertyID int64  `json:"property_id" binding:"required,gt=0"`
	StartDate  string `json:"start_date" binding:"required,isodate"`
	EndDate    string `json:"end_date" binding:"required,isodate"`
	Guests     *int   `json:"guests" binding:"omitempty,gte=1"`
}

// CreateBookingResult is returned by CreateBooking.
type CreateBookingResult struct {
	InsertID int64 `json:"insertId"`
}

// MessageResult carries a human-readable outcome.
type MessageResult struct {
	Message string `json:"message"`
}

// Outcome messages for owner decisions.
const (
	MsgAlreadyAccepted = "Already accepted"
	MsgBookingAccepted = "Booking accepted"
	MsgBookingCanceled = "Booking cancelled"
)

// BookedRangeDTO is one blocked interval on a property calendar.
type BookedRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	properties propertyDomain.PropertyRepository
	images     imageDomain.ImageRepository
	ids        sequence.Allocator
	checker    *bookingDomain.ConflictChecker
	pricing    bookingDomain.PricingStrategy
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewBookingService creates a new BookingService. m may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	properties propertyDomain.PropertyRepository,
	images imageDomain.ImageRepository,
	ids sequence.Allocator,
	pricing bookingDomain.PricingStrategy,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		properties: properties,
		images:     images,
		ids:        ids,
		checker:    bookingDomain.NewConflictChecker(repo),
		pricing:    pricing,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateBooking writes a PENDING booking for travelerID and announces it on booking_req.
func (s *BookingService) CreateBooking(ctx context.Context, travelerID int64, req CreateBookingRequest) (*CreateBookingResult, error) {
	dates, err := bookingDomain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !dates.Within(prop.AvailabilityStart(), prop.AvailabilityEnd()) {
		return nil, domain.NewValidationError("requested dates fall outside the property's availability")
	}

	id, err := s.ids.Next(ctx, sequence.CounterBooking)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate booking ID: %w", err)
	}

	bk, err := bookingDomain.NewBooking(id, travelerID, prop.ID(), dates, req.Guests)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		Status:     string(bk.Status()),
		PropertyID: bk.PropertyID(),
		TravelerID: bk.TravelerID(),
	}
	if err := s.publish(ctx, events.TopicBookingRequested, bk.ID(), evt); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("property_id", bk.PropertyID()),
		zap.Int64("traveler_id", travelerID),
	)
	return &CreateBookingResult{InsertID: bk.ID()}, nil
}

// AcceptBooking validates an owner's accept decision and publishes it. The store is
// updated later by the status consumer, so a caller may still read PENDING right after.
func (s *BookingService) AcceptBooking(ctx context.Context, ownerID, bookingID int64) (*MessageResult, error) {
	bk, err := s.getOwnedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	changed, err := bk.Decide(bookingDomain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &MessageResult{Message: MsgAlreadyAccepted}, nil
	}

	conflict, err := s.checker.HasConflict(ctx, bk.PropertyID(), bk.ID(), bk.Dates())
	if err != nil {
		return nil, err
	}
	if conflict {
		if s.metrics != nil {
			s.metrics.AcceptConflicts.Inc()
		}
		return nil, domain.NewConflictError("Date conflict with an existing accepted booking")
	}

	if err := s.publishStatus(ctx, ownerID, bk, bookingDomain.StatusAccepted); err != nil {
		return nil, err
	}
	return &MessageResult{Message: MsgBookingAccepted}, nil
}

// CancelBooking publishes an owner's cancel decision. Cancelling a cancelled booking is
// a successful no-op.
func (s *BookingService) CancelBooking(ctx context.Context, ownerID, bookingID int64) (*MessageResult, error) {
	bk, err := s.getOwnedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	changed, err := bk.Decide(bookingDomain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &MessageResult{Message: MsgBookingCanceled}, nil
	}

	if err := s.publishStatus(ctx, ownerID, bk, bookingDomain.StatusCancelled); err != nil {
		return nil, err
	}
	return &MessageResult{Message: MsgBookingCanceled}, nil
}

// ListBookedDateRanges returns every booking range of a property, whatever its status,
// with the end rendered as the last millisecond of the checkout day.
func (s *BookingService) ListBookedDateRanges(ctx context.Context, propertyID int64) ([]BookedRangeDTO, error) {
	bookings, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	ranges := make([]BookedRangeDTO, len(bookings))
	for i, bk := range bookings {
		ranges[i] = BookedRangeDTO{
			Start: bk.Dates().StartInstantString(),
			End:   bk.Dates().EndOfDayString(),
		}
	}
	return ranges, nil
}

// getOwnedBooking loads a booking on a property owned by ownerID. Absent and unowned
// bookings produce the same not-found error.
func (s *BookingService) getOwnedBooking(ctx context.Context, ownerID, bookingID int64) (*bookingDomain.Booking, error) {
	notFound := domain.NewNotFoundError("Booking", strconv.FormatInt(bookingID, 10))

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, notFound
		}
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, bk.PropertyID())
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, notFound
		}
		return nil, err
	}
	if !prop.IsOwnedBy(ownerID) {
		return nil, notFound
	}
	return bk, nil
}

func (s *BookingService) publishStatus(ctx context.Context, ownerID int64, bk *bookingDomain.Booking, status bookingDomain.BookingStatus) error {
	evt := events.BookingStatusChangedEvent{
		BookingID: bk.ID(),
		Status:    string(status),
		OwnerID:   ownerID,
	}
	if err := s.publish(ctx, events.TopicBookingStatus, bk.ID(), evt); err != nil {
		return err
	}
	s.logger.Info("booking decision published",
		zap.Int64("booking_id", bk.ID()),
		zap.String("status", string(status)),
		zap.Int64("owner_id", ownerID),
	)
	return nil
}

func (s *BookingService) publish(ctx context.Context, topic string, bookingID int64, payload any) error {
	if err := s.publisher.Publish(ctx, topic, strconv.FormatInt(bookingID, 10), payload); err != nil {
		s.logger.Error("failed to publish booking event",
			zap.String("topic", topic),
			zap.Int64("booking_id", bookingID),
			zap.Error(err),
		)
		return domain.NewUnavailableError("booking event channel unavailable", err)
	}
	return nil
}
