package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// BookingEvent is published after a booking batch commits or a booking is
// cancelled. BatchRef groups all bookings from one checkout.
type BookingEvent struct {
	Type           string          `json:"type"`
	BatchRef       string          `json:"batch_ref"`
	BookingID      int64           `json:"booking_id"`
	EventID        int64           `json:"event_id"`
	UserID         int64           `json:"user_id"`
	TicketTypeID   int64           `json:"ticket_type_id"`
	TicketTypeName string          `json:"ticket_type_name"`
	Quantity       int             `json:"quantity"`
	PaymentRef     string          `json:"payment_ref"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReleaseTask is a durable request to return cancelled tickets to the
// ledger. It is queued when the in-process release after a cancellation
// keeps failing and is drained by the worker with at-least-once semantics.
type ReleaseTask struct {
	TaskID       string `json:"task_id"`
	BookingID    int64  `json:"booking_id"`
	EventID      int64  `json:"event_id"`
	TicketTypeID int64  `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	Attempts     int    `json:"attempts"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("publish attempt %d to %s failed: %v", i+1, topic, err)

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
