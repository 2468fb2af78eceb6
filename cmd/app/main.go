package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyconnect/config"
	"github.com/Domenick1991/skyconnect/internal/bootstrap"
	"github.com/Domenick1991/skyconnect/internal/cache"
	"github.com/Domenick1991/skyconnect/internal/flightgen"
	"github.com/Domenick1991/skyconnect/internal/kafka"
	"github.com/Domenick1991/skyconnect/internal/repository"
	"github.com/Domenick1991/skyconnect/internal/service/booking"
	"github.com/Domenick1991/skyconnect/internal/service/flights"
	"github.com/Domenick1991/skyconnect/internal/ticket"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store booking.BookingStore
	if cfg.Database.Enabled() {
		pool, err := connectStore(ctx, cfg.Database)
		if err != nil {
			log.Printf("WARNING: bookings will not be persisted: %v", err)
		} else {
			defer pool.Close()
			store = repository.NewBookingRepository(pool)
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.OffersTTL(), cfg.Booking.SessionTTL())
	if err := redisCache.Ping(ctx); err != nil {
		log.Fatalf("connect redis: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Printf("WARNING: kafka unavailable, events will be dropped: %v", err)
	}

	generator := flightgen.NewGenerator(cfg.Booking.GeneratorSeed, loc)
	flightService := flights.NewFlightService(generator, redisCache)
	bookingService := booking.NewBookingService(
		redisCache,
		flightService,
		flightgen.NewSeatMap(),
		store,
		ticket.NewRenderer(),
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithRoute(cfg.Booking.Origin, cfg.Booking.Destination),
		booking.WithServiceStoreTimeout(cfg.Booking.StoreTimeout()),
		booking.WithSessionLock(cfg.Booking.LockTTL(), cfg.Booking.LockWait()),
		booking.WithServiceClock(func() time.Time { return time.Now().In(loc) }),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func connectStore(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := repository.EnsureSchema(pingCtx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
