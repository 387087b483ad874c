package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventtickets/config"
	"eventtickets/internal/domain"
	"eventtickets/internal/email"
	"eventtickets/internal/kafka"
	"eventtickets/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker drains the two queues behind the booking core: booking events
// feed notifications, and release tasks return cancelled tickets to the
// ledger with at-least-once semantics.
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

	storeTimeout := time.Duration(cfg.Booking.StoreTimeoutMillis) * time.Millisecond
	ledger := repository.NewTicketTypeRepository(pool, storeTimeout)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	eventsConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
	defer eventsConsumer.Close()
	releaseConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReleaseTopic)
	defer releaseConsumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := eventsConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode booking event error: %v", err)
				return nil
			}
			if err := emailSender.Send(ctx, event); err != nil {
				// Notification delivery never blocks the booking pipeline.
				log.Printf("send notification for booking %d failed: %v", event.BookingID, err)
			}
			return nil
		}); err != nil {
			log.Printf("events consumer stopped: %v", err)
		}
	}()

	go func() {
		if err := releaseConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var task kafka.ReleaseTask
			if err := json.Unmarshal(msg.Value, &task); err != nil {
				log.Printf("decode release task error: %v", err)
				return nil
			}
			handleRelease(ctx, ledger, producer, cfg, task)
			return nil
		}); err != nil {
			log.Printf("release consumer stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down worker")
}

// handleRelease applies one queued ledger release. Transient failures
// requeue the task so the release eventually lands; an invariant violation
// is logged and dropped, because repeating it cannot make the counters
// right.
func handleRelease(ctx context.Context, ledger repository.TicketTypeRepository, producer *kafka.Producer, cfg *config.Config, task kafka.ReleaseTask) {
	err := repository.WithRetry(ctx, cfg.Worker.ReleaseRetries, func() error {
		return ledger.Release(ctx, task.TicketTypeID, task.Quantity)
	})
	if err == nil {
		log.Printf("released %d tickets on ticket type %d (booking %d)", task.Quantity, task.TicketTypeID, task.BookingID)
		return
	}

	if !domain.IsTransient(err) {
		log.Printf("release task %s failed permanently: %v", task.TaskID, err)
		return
	}

	task.Attempts++
	log.Printf("release task %s still failing after attempt %d, requeueing: %v", task.TaskID, task.Attempts, err)
	if perr := producer.PublishWithRetry(ctx, cfg.Kafka.ReleaseTopic, task.TaskID, task, 3); perr != nil {
		log.Printf("CRITICAL: could not requeue release task %s, tickets stay unreleased: %v", task.TaskID, perr)
	}
}
