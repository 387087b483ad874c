package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventtickets/config"
	"eventtickets/internal/bootstrap"
	"eventtickets/internal/cache"
	"eventtickets/internal/kafka"
	"eventtickets/internal/repository"
	"eventtickets/internal/service/booking"
	"eventtickets/internal/service/tickets"
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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	storeTimeout := time.Duration(cfg.Booking.StoreTimeoutMillis) * time.Millisecond
	ticketTypeRepo := repository.NewTicketTypeRepository(pool, storeTimeout)
	bookingRepo := repository.NewBookingRepository(pool, storeTimeout)

	ticketService := tickets.NewTicketService(ticketTypeRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		ticketTypeRepo,
		ticketTypeRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Booking.StoreRetries,
		booking.WithReleaseTopic(cfg.Kafka.ReleaseTopic),
	)

	if err := bootstrap.Run(ctx, cfg, ticketService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
