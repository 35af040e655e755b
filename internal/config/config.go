package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stayloop/service-booking/internal/platform/database"
)

// Event transports.
const (
	TransportKafka  = "kafka"
	TransportMemory = "memory"
)

// Sequence allocator backends.
const (
	SequencePostgres = "postgres"
	SequenceRedis    = "redis"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	DBConfig        database.PostgresConfig
	JWTConfig       JWTConfig
	KafkaConfig     KafkaConfig
	EventTransport  string
	SequenceBackend string
	RedisAddr       string
	CORSOrigins     []string
	AllowAllCORS    bool
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "local"
}

// Load reads configuration from BOOKING_* environment variables. A .env file in the
// working directory is loaded first when present; real environment variables win.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		EventTransport:  strings.ToLower(v.GetString("EVENT_TRANSPORT")),
		SequenceBackend: strings.ToLower(v.GetString("SEQUENCE_BACKEND")),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		AllowAllCORS:    v.GetBool("ALLOW_ALL_CORS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8004")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "stayloop_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "service-booking")
	v.SetDefault("EVENT_TRANSPORT", TransportKafka)
	v.SetDefault("SEQUENCE_BACKEND", SequencePostgres)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ALLOW_ALL_CORS", false)
}

func (c *ServiceConfig) validate() error {
	if c.JWTConfig.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("BOOKING_JWT_SECRET is required outside development")
		}
		c.JWTConfig.Secret = "dev-secret-change-me"
	}
	switch c.EventTransport {
	case TransportKafka:
		if len(c.KafkaConfig.Brokers) == 0 {
			return errors.New("BOOKING_KAFKA_BROKERS is required for the kafka transport")
		}
	case TransportMemory:
	default:
		return fmt.Errorf("unknown BOOKING_EVENT_TRANSPORT %q", c.EventTransport)
	}
	switch c.SequenceBackend {
	case SequencePostgres:
	case SequenceRedis:
		if c.RedisAddr == "" {
			return errors.New("BOOKING_REDIS_ADDR is required for the redis sequence backend")
		}
	default:
		return fmt.Errorf("unknown BOOKING_SEQUENCE_BACKEND %q", c.SequenceBackend)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
