package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	BookingID  int64     `gorm:"column:booking_id;primaryKey;autoIncrement:false"`
	TravelerID int64     `gorm:"not null;index"`
	PropertyID int64     `gorm:"not null;index:idx_bookings_property_status"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Guests     *int      `gorm:""`
	Status     string    `gorm:"not null;size:20;index:idx_bookings_property_status"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// acceptIfFreeSQL moves a PENDING booking to ACCEPTED only while no other ACCEPTED
// booking of the same property overlaps it.
const acceptIfFreeSQL = `
UPDATE bookings
SET status = ?, version = version + 1, updated_at = ?
WHERE booking_id = ?
  AND status = ?
  AND NOT EXISTS (
    SELECT 1 FROM bookings other
    WHERE other.property_id = bookings.property_id
      AND other.status = ?
      AND other.booking_id <> bookings.booking_id
      AND other.end_date > bookings.start_date
      AND other.start_date < bookings.end_date
  )`

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// ListByTraveler retrieves a traveler's bookings, newest first.
func (r *GormBookingRepository) ListByTraveler(ctx context.Context, travelerID int64, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Where("traveler_id = ?", travelerID)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}

	var models []BookingModel
	if err := q.Order("created_at DESC, booking_id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list traveler bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ListByPropertyOwner retrieves bookings on properties owned by ownerID, newest first.
func (r *GormBookingRepository) ListByPropertyOwner(ctx context.Context, ownerID int64, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).
		Select("bookings.*").
		Joins("JOIN properties ON properties.property_id = bookings.property_id").
		Where("properties.owner_id = ?", ownerID)
	if filter.Status != nil {
		q = q.Where("bookings.status = ?", string(*filter.Status))
	}

	var models []BookingModel
	if err := q.Order("bookings.created_at DESC, bookings.booking_id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ListByProperty retrieves every booking of a property regardless of status, newest first.
func (r *GormBookingRepository) ListByProperty(ctx context.Context, propertyID int64) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC, booking_id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list property bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CountAcceptedOverlaps counts ACCEPTED bookings of propertyID, other than excludeID,
// overlapping the half-open range dates.
func (r *GormBookingRepository) CountAcceptedOverlaps(ctx context.Context, propertyID, excludeID int64, dates bookingDomain.DateRange) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("property_id = ? AND status = ? AND booking_id <> ?", propertyID, string(bookingDomain.StatusAccepted), excludeID).
		Where("end_date > ? AND start_date < ?", dates.Start, dates.End).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return n, nil
}

// ApplyStatus moves a booking to status. It runs in one transaction: ACCEPTED writes first
// lock the property row so accepts on one property serialize, then update conditionally on
// PENDING and the absence of an overlapping ACCEPTED booking.
func (r *GormBookingRepository) ApplyStatus(ctx context.Context, id int64, status bookingDomain.BookingStatus) (bookingDomain.ApplyResult, error) {
	result := bookingDomain.ApplyUnchanged

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BookingModel
		if err := tx.Where("booking_id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = bookingDomain.ApplyNotFound
				return nil
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}

		current := bookingDomain.BookingStatus(model.Status)
		if !current.CanTransitionTo(status) {
			return nil
		}
		now := time.Now().UTC()

		switch status {
		case bookingDomain.StatusAccepted:
			var prop PropertyModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("property_id").
				Where("property_id = ?", model.PropertyID).
				Take(&prop).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to lock property: %w", err)
			}

			res := tx.Exec(acceptIfFreeSQL,
				string(bookingDomain.StatusAccepted), now, id,
				string(bookingDomain.StatusPending), string(bookingDomain.StatusAccepted))
			if res.Error != nil {
				return fmt.Errorf("failed to accept booking: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				result = bookingDomain.ApplyApplied
				return nil
			}

			// The status may have moved underneath us; only a still-PENDING row lost to an overlap.
			var after BookingModel
			if err := tx.Select("status").Where("booking_id = ?", id).Take(&after).Error; err != nil {
				return fmt.Errorf("failed to reload booking: %w", err)
			}
			if after.Status == string(bookingDomain.StatusPending) {
				result = bookingDomain.ApplyConflict
			}
			return nil

		case bookingDomain.StatusCancelled:
			res := tx.Model(&BookingModel{}).
				Where("booking_id = ? AND status IN ?", id, []string{
					string(bookingDomain.StatusPending),
					string(bookingDomain.StatusAccepted),
				}).
				Updates(map[string]interface{}{
					"status":     string(bookingDomain.StatusCancelled),
					"version":    gorm.Expr("version + 1"),
					"updated_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to cancel booking: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				result = bookingDomain.ApplyApplied
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// ListAll retrieves one page of bookings across all properties, newest first.
func (r *GormBookingRepository) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&BookingModel{})
		if filter.Status != nil {
			q = q.Where("status = ?", string(*filter.Status))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := filtered().
		Order("created_at DESC, booking_id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		BookingID:  bk.ID(),
		TravelerID: bk.TravelerID(),
		PropertyID: bk.PropertyID(),
		StartDate:  bk.StartDate(),
		EndDate:    bk.EndDate(),
		Guests:     bk.Guests(),
		Status:     string(bk.Status()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.BookingID,
		m.TravelerID,
		m.PropertyID,
		bookingDomain.DateRange{
			Start: bookingDomain.NormalizeDate(m.StartDate),
			End:   bookingDomain.NormalizeDate(m.EndDate),
		},
		m.Guests,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
