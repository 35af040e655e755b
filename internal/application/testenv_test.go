package application

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/platform/metrics"
	"github.com/stayloop/service-booking/internal/repository"
)

// testNow is the wall clock seen by services under test.
var testNow = time.Date(2025, time.November, 1, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	t          *testing.T
	bookings   *repository.GormBookingRepository
	properties *repository.GormPropertyRepository
	images     *repository.GormImageRepository
	bus        *events.Bus
	channel    *events.MemoryChannel
	metrics    *metrics.Metrics
	svc        *BookingService
	props      *PropertyService
	favs       *FavoriteService
	logger     *zap.Logger
}

// newTestEnv wires the services to SQLite and an in-memory event channel whose
// status consumer writes back to the same store. The channel is not running until
// start is called.
func newTestEnv(t *testing.T) *testEnv {
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
	require.NoError(t, repository.AutoMigrate(db))

	log := zaptest.NewLogger(t)
	m := metrics.New()
	bookings := repository.NewGormBookingRepository(db)
	properties := repository.NewGormPropertyRepository(db)
	images := repository.NewGormImageRepository(db)
	ids := m.InstrumentAllocator(repository.NewSQLSequenceAllocator(db))

	bus := events.NewBus(m, log)
	channel := events.NewMemoryChannel(bus, 64, m, log)
	events.NewBookingStatusConsumer(bookings, m, log).Register(bus)
	events.NewBookingRequestLogger(log).Register(bus)

	svc := NewBookingService(bookings, properties, images, ids, bookingDomain.NewNightlyPricingStrategy(), channel, m, log)
	svc.now = func() time.Time { return testNow }

	return &testEnv{
		t:          t,
		bookings:   bookings,
		properties: properties,
		images:     images,
		bus:        bus,
		channel:    channel,
		metrics:    m,
		svc:        svc,
		props:      NewPropertyService(properties, images, ids, log),
		favs:       NewFavoriteService(repository.NewGormFavoriteRepository(db), properties, images, ids, log),
		logger:     log,
	}
}

// start runs the event loop until the test ends.
func (e *testEnv) start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.channel.Run(ctx)
	}()
	e.t.Cleanup(func() {
		cancel()
		<-done
	})
}

func (e *testEnv) createProperty(ownerID, priceCents int64) *PropertyDTO {
	e.t.Helper()
	dto, err := e.props.CreateProperty(context.Background(), ownerID, PropertyRequest{
		Name:               gofakeit.Company() + " Villa",
		Type:               "villa",
		Location:           gofakeit.City(),
		PricePerNightCents: priceCents,
		Bedrooms:           2,
		Bathrooms:          1,
	})
	require.NoError(e.t, err)
	return dto
}

func (e *testEnv) createBooking(travelerID, propertyID int64, start, end string) int64 {
	e.t.Helper()
	res, err := e.svc.CreateBooking(context.Background(), travelerID, CreateBookingRequest{
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(e.t, err)
	return res.InsertID
}

func (e *testEnv) status(id int64) bookingDomain.BookingStatus {
	e.t.Helper()
	bk, err := e.bookings.FindByID(context.Background(), id)
	require.NoError(e.t, err)
	return bk.Status()
}

// waitStatus blocks until the consumer has applied want to booking id.
func (e *testEnv) waitStatus(id int64, want bookingDomain.BookingStatus) {
	e.t.Helper()
	require.Eventually(e.t, func() bool {
		bk, err := e.bookings.FindByID(context.Background(), id)
		return err == nil && bk.Status() == want
	}, 2*time.Second, 5*time.Millisecond, "booking %d never became %s", id, want)
}
