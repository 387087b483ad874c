package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a priced admission category for an event with a finite
// allocation. Invariant: TotalTickets == AvailableTickets + BookedTickets,
// both non-negative. The counters are mutated only through the ledger;
// creation and resizing belong to the catalog.
type TicketType struct {
	ID               int64           `json:"id"`
	EventID          int64           `json:"event_id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	BookedTickets    int             `json:"booked_tickets"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
