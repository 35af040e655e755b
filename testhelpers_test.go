//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/application"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	bookingEvents "github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/platform/database"
	"github.com/stayloop/service-booking/internal/platform/metrics"
	"github.com/stayloop/service-booking/internal/repository"
	"github.com/stayloop/service-booking/migrations"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service  *application.BookingService
	Props    *application.PropertyService
	Bookings *repository.GormBookingRepository
	Channel  *bookingEvents.KafkaChannel
	Metrics  *metrics.Metrics
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the SQL
// migrations and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), migrations.FS, logger))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingRequested, bookingEvents.TopicBookingStatus)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the services to Postgres and a Kafka channel whose
// status consumer writes back to the same database.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	m := metrics.New()

	bookings := repository.NewGormBookingRepository(db)
	properties := repository.NewGormPropertyRepository(db)
	images := repository.NewGormImageRepository(db)
	ids := m.InstrumentAllocator(repository.NewSQLSequenceAllocator(db))

	bus := bookingEvents.NewBus(m, logger)
	bookingEvents.NewBookingStatusConsumer(bookings, m, logger).Register(bus)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	channel := bookingEvents.NewKafkaChannel(brokers, groupID, bus, m, logger)

	return &bookingStack{
		Service: application.NewBookingService(bookings, properties, images, ids,
			bookingDomain.NewNightlyPricingStrategy(), channel, m, logger),
		Props:    application.NewPropertyService(properties, images, ids, logger),
		Bookings: bookings,
		Channel:  channel,
		Metrics:  m,
	}
}

// waitForBookingStatus polls the store until the booking has the expected status.
func waitForBookingStatus(t *testing.T, repo *repository.GormBookingRepository, bookingID int64, expected bookingDomain.BookingStatus, timeout time.Duration) *bookingDomain.Booking {
	t.Helper()
	var result *bookingDomain.Booking
	require.Eventually(t, func() bool {
		bk, err := repo.FindByID(context.Background(), bookingID)
		if err != nil || bk.Status() != expected {
			return false
		}
		result = bk
		return true
	}, timeout, 200*time.Millisecond, "booking %d did not transition to %s", bookingID, expected)
	return result
}

// consumeOne reads a topic from the beginning until it finds a record keyed by bookingID.
func consumeOne(t *testing.T, brokers []string, topic string, bookingID int64, timeout time.Duration) kafkago.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	key := strconv.FormatInt(bookingID, 10)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for booking %d on topic %q", bookingID, topic)
			}
			continue
		}
		if string(msg.Key) == key {
			return msg
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
