package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/shortlet/config"
	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/cache"
	"github.com/Domenick1991/shortlet/internal/email"
	"github.com/Domenick1991/shortlet/internal/kafka"
	"github.com/Domenick1991/shortlet/internal/payment"
	"github.com/Domenick1991/shortlet/internal/repository"
	"github.com/Domenick1991/shortlet/internal/service/booking"
	"github.com/Domenick1991/shortlet/internal/worker"
	"github.com/go-co-op/gocron/v2"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	gateway, err := payment.NewGateway(cfg.Payment)
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	propertyRepo := repository.NewPropertyRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ledger := availability.NewLedger(propertyRepo, bookingRepo,
		availability.WithCache(redisCache),
		availability.WithLocker(locker),
		availability.WithOpTimeout(cfg.Booking.OpTimeout()),
	)
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

	emailSender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		log.Fatalf("smtp client: %v", err)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, kafka.BookingEventHandler(emailSender.Send)); err != nil {
			log.Printf("[worker] consumer stopped: %v", err)
		}
	}()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("create scheduler: %v", err)
	}
	if err := worker.Schedule(ctx, scheduler, bookingService,
		time.Duration(cfg.Worker.ExpirationSweepMinutes)*time.Minute,
		time.Duration(cfg.Worker.ReconcileMinutes)*time.Minute,
	); err != nil {
		log.Fatalf("schedule jobs: %v", err)
	}
	scheduler.Start()

	<-ctx.Done()
	log.Printf("[worker] shutting down")
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("[worker] scheduler shutdown: %v", err)
	}
}
