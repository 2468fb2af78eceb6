package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
http:
  address: ":8081"
grpc:
  address: ":9091"
database:
  host: db
  port: 5432
  user: sky
  password: secret
  name: skyconnect
  ssl_mode: disable
redis:
  addr: redis:6379
kafka:
  brokers: ["kafka:9092"]
  booking_topic: bookings
booking:
  session_ttl_minutes: 30
  generator_seed: 42
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9091", cfg.GRPC.Address)
	assert.Equal(t, "host=db port=5432 user=sky password=secret dbname=skyconnect sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking-notifications", cfg.Kafka.NotificationsTopic, "defaults survive a partial file")
	assert.Equal(t, "HYD", cfg.Booking.Origin)
	assert.Equal(t, "GOI", cfg.Booking.Destination)
	assert.Equal(t, 30*time.Minute, cfg.Booking.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.Booking.OffersTTL())
	assert.Equal(t, 5*time.Second, cfg.Booking.StoreTimeout())
	assert.Equal(t, 10*time.Second, cfg.Booking.LockTTL())
	assert.Equal(t, 5*time.Second, cfg.Booking.LockWait())
	assert.Equal(t, uint64(42), cfg.Booking.GeneratorSeed)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://sky@neon/skyconnect?sslmode=require")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("HTTP_ADDRESS", ":9999")

	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "postgres://sky@neon/skyconnect?sslmode=require", cfg.Database.DSN())
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, ":9999", cfg.HTTP.Address)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestBookingConfig_Location(t *testing.T) {
	loc, err := BookingConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = BookingConfig{Timezone: "Nowhere/Special"}.Location()
	assert.Error(t, err)
}
