package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/shortlet/api"
	"github.com/Domenick1991/shortlet/config"
	"github.com/Domenick1991/shortlet/internal/auth"
	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/bootstrap"
	"github.com/Domenick1991/shortlet/internal/cache"
	"github.com/Domenick1991/shortlet/internal/kafka"
	"github.com/Domenick1991/shortlet/internal/payment"
	"github.com/Domenick1991/shortlet/internal/repository"
	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/Domenick1991/shortlet/internal/service/property"
	"github.com/Domenick1991/shortlet/internal/service/review"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.PropertiesCacheTTL(), cfg.Booking.DatesCacheTTL())
	defer redisCache.Close()
	locker := cache.NewRedisLocker(redisCache.Client(), cache.WithLockTTL(cfg.Booking.LockTTL()))

	producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.WithAttempts(2), kafka.WithBackoff(200*time.Millisecond))
	defer producer.Close()

	gateway, err := payment.NewGateway(cfg.Payment)
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	propertyRepo := repository.NewPropertyRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	ledger := availability.NewLedger(propertyRepo, bookingRepo,
		availability.WithCache(redisCache),
		availability.WithLocker(locker),
		availability.WithOpTimeout(cfg.Booking.OpTimeout()),
	)

	propertyService := property.NewPropertyService(propertyRepo, redisCache, ledger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		propertyRepo,
		ledger,
		gateway,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Booking.PendingTTL(),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	reviewService := review.NewReviewService(reviewRepo, propertyRepo, bookingRepo)

	authenticator := auth.NewAuthenticator(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	log.Printf("[app] listening on %s with %s payments", cfg.HTTP.Address, gateway.Name())
	if err := bootstrap.Run(ctx, cfg.HTTP, bootstrap.Handlers{
		Properties:   api.NewPropertyHandler(propertyService),
		Availability: api.NewAvailabilityHandler(ledger),
		Bookings:     api.NewBookingHandler(bookingService),
		Payments:     api.NewPaymentHandler(bookingService),
		Reviews:      api.NewReviewHandler(reviewService),
		Admin:        api.NewAdminHandler(authenticator),
		Health: map[string]bootstrap.HealthCheck{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisCache.Client().Ping(ctx).Err()
			},
			"kafka": func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				return producer.CheckConnection(ctx)
			},
		},
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
