package email

import (
	"context"
	"fmt"

	"eventtickets/internal/kafka"
)

// Sender hands booking notifications to the delivery channel. Failures here
// never touch the booking itself; the worker simply logs and moves on.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify user %d: %s for %d x %q (booking %d)\n", event.UserID, event.Type, event.Quantity, event.TicketTypeName, event.BookingID)
	return nil
}
