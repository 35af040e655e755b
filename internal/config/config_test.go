package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8004", cfg.Port)
	assert.Equal(t, "localhost", cfg.DBConfig.Host)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, TransportKafka, cfg.EventTransport)
	assert.Equal(t, SequencePostgres, cfg.SequenceBackend)
	assert.Equal(t, 15*time.Minute, cfg.JWTConfig.AccessTokenTTL)
	assert.NotEmpty(t, cfg.JWTConfig.Secret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "production")
	t.Setenv("BOOKING_SERVICE_PORT", "9000")
	t.Setenv("BOOKING_JWT_SECRET", "s3cret")
	t.Setenv("BOOKING_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("BOOKING_EVENT_TRANSPORT", "MEMORY")
	t.Setenv("BOOKING_SEQUENCE_BACKEND", "redis")
	t.Setenv("BOOKING_REDIS_ADDR", "redis:6379")
	t.Setenv("BOOKING_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BOOKING_ALLOW_ALL_CORS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTConfig.Secret)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, TransportMemory, cfg.EventTransport)
	assert.Equal(t, SequenceRedis, cfg.SequenceBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AllowAllCORS)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret in production",
			env:  map[string]string{"BOOKING_APP_ENV": "production"},
		},
		{
			name: "unknown transport",
			env:  map[string]string{"BOOKING_EVENT_TRANSPORT": "carrier-pigeon"},
		},
		{
			name: "unknown sequence backend",
			env:  map[string]string{"BOOKING_SEQUENCE_BACKEND": "etcd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
