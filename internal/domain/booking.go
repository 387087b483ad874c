package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is one row of a checkout batch: a quantity of a single ticket type
// bought by one user. TicketTypeName and TotalAmount are snapshotted at
// creation so later catalog edits do not alter historical bookings.
// Bookings are created confirmed (payment already settled) and are never
// deleted.
type Booking struct {
	ID             int64           `json:"id"`
	EventID        int64           `json:"event_id"`
	UserID         int64           `json:"user_id"`
	TicketTypeID   int64           `json:"ticket_type_id"`
	TicketTypeName string          `json:"ticket_type_name"`
	Quantity       int             `json:"quantity"`
	PaymentRef     string          `json:"payment_ref"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         BookingStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValidTransition reports whether a booking may move from one status to
// another. Cancelled and completed are terminal; the only caller-initiated
// transition is confirmed -> cancelled. Completed is assigned by the
// event-lifecycle scheduler, never through this core.
func ValidTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusConfirmed:
		return to == BookingStatusCancelled || to == BookingStatusCompleted
	default:
		return false
	}
}

// Actor is the authenticated caller as supplied by the identity provider.
type Actor struct {
	UserID int64
	Role   string
}

const RoleAdmin = "admin"

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanCancel reports whether the actor may cancel the booking: the owning
// user, or an administrator.
func (b *Booking) CanCancel(actor Actor) bool {
	return actor.IsAdmin() || actor.UserID == b.UserID
}
