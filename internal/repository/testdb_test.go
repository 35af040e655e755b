package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
)

// newTestDB opens a private in-memory SQLite database with the service schema.
// A single connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedProperty(t *testing.T, repo *GormPropertyRepository, id, ownerID int64) *propertyDomain.Property {
	t.Helper()
	p, err := propertyDomain.NewProperty(id, ownerID, propertyDomain.Details{
		Name:               gofakeit.Company() + " Lodge",
		Type:               "cabin",
		Location:           gofakeit.City(),
		PricePerNightCents: int64(gofakeit.IntRange(5000, 30000)),
		Bedrooms:           gofakeit.IntRange(1, 5),
		Bathrooms:          gofakeit.IntRange(1, 3),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func seedBooking(t *testing.T, repo *GormBookingRepository, id, travelerID, propertyID int64, start, end string, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	dates, err := bookingDomain.ParseDateRange(start, end)
	require.NoError(t, err)

	bk, err := bookingDomain.NewBooking(id, travelerID, propertyID, dates, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), bk))

	if status != bookingDomain.StatusPending {
		res, err := repo.ApplyStatus(context.Background(), id, status)
		require.NoError(t, err)
		require.Equal(t, bookingDomain.ApplyApplied, res)
	}
	return bk
}
