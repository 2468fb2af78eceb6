package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	GRPC     GRPCConfig     `yaml:"grpc" envPrefix:"GRPC_"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `yaml:"kafka" envPrefix:"KAFKA_"`
	Booking  BookingConfig  `yaml:"booking"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" env:"ADDRESS"`
	SwaggerDir string `yaml:"swagger_dir" env:"SWAGGER_DIR"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"ADDRESS"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN prefers a full connection URL when one is configured.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	Origin             string `yaml:"origin"`
	Destination        string `yaml:"destination"`
	Timezone           string `yaml:"timezone"`
	SessionTTLMinutes  int    `yaml:"session_ttl_minutes"`
	OffersCacheTTL     int    `yaml:"offers_cache_ttl_seconds"`
	StoreTimeoutSecond int    `yaml:"store_timeout_seconds"`
	LockTTLSeconds     int    `yaml:"session_lock_ttl_seconds"`
	LockWaitSeconds    int    `yaml:"session_lock_wait_seconds"`
	GeneratorSeed      uint64 `yaml:"generator_seed" env:"GENERATOR_SEED"`
}

func (b BookingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

func (b BookingConfig) SessionTTL() time.Duration {
	return time.Duration(b.SessionTTLMinutes) * time.Minute
}

func (b BookingConfig) OffersTTL() time.Duration {
	return time.Duration(b.OffersCacheTTL) * time.Second
}

func (b BookingConfig) StoreTimeout() time.Duration {
	return time.Duration(b.StoreTimeoutSecond) * time.Second
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitSeconds) * time.Second
}

func defaults() Config {
	return Config{
		HTTP: HTTPConfig{Address: ":8080"},
		GRPC: GRPCConfig{Address: ":9090"},
		Kafka: KafkaConfig{
			BookingTopic:       "bookings",
			NotificationsTopic: "booking-notifications",
			GroupID:            "skyconnect-notifier",
		},
		Booking: BookingConfig{
			Origin:             "HYD",
			Destination:        "GOI",
			Timezone:           "Asia/Kolkata",
			SessionTTLMinutes:  60,
			OffersCacheTTL:     86400,
			StoreTimeoutSecond: 5,
			LockTTLSeconds:     10,
			LockWaitSeconds:    5,
		},
	}
}

// LoadConfig reads the YAML file at path over the built-in defaults, then
// applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}
