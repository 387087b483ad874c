package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketTypeRepository is the authoritative ledger of per-ticket-type
// counters plus the read-only catalog view. Reserve and Release are the only
// writers of the counters anywhere in the system.
type TicketTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketType, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	Reserve(ctx context.Context, ticketTypeID int64, qty int) error
	Release(ctx context.Context, ticketTypeID int64, qty int) error
}

const defaultStoreTimeout = 3 * time.Second

type PGTicketTypeRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewTicketTypeRepository(db *pgxpool.Pool, timeout time.Duration) TicketTypeRepository {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &PGTicketTypeRepository{db: db, timeout: timeout}
}

const ticketTypeColumns = `id, event_id, name, price::text, total_tickets, available_tickets, booked_tickets, created_at, updated_at`

func scanTicketType(row pgx.Row) (*domain.TicketType, error) {
	var tt domain.TicketType
	var price string
	if err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &price, &tt.TotalTickets, &tt.AvailableTickets, &tt.BookedTickets, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimalFromStore(price)
	if err != nil {
		return nil, err
	}
	tt.Price = parsed
	return &tt, nil
}

func (r *PGTicketTypeRepository) GetByID(ctx context.Context, id int64) (*domain.TicketType, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+ticketTypeColumns+` FROM events_ticket_types WHERE id=$1`, id)
	tt, err := scanTicketType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "ticket type", ID: id}
		}
		return nil, classify("ticket_types.get", err)
	}
	return tt, nil
}

func (r *PGTicketTypeRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+ticketTypeColumns+` FROM events_ticket_types WHERE event_id=$1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, classify("ticket_types.list", err)
	}
	defer rows.Close()

	types := make([]domain.TicketType, 0)
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, classify("ticket_types.list", err)
		}
		types = append(types, *tt)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ticket_types.list", err)
	}
	return types, nil
}

// Reserve atomically checks availability and moves qty tickets from
// available to booked in one conditional write. Concurrent reservations for
// the last tickets are serialized by the row update; the loser sees zero
// rows affected and gets InsufficientInventory with the current count.
func (r *PGTicketTypeRepository) Reserve(ctx context.Context, ticketTypeID int64, qty int) error {
	if qty <= 0 {
		return &domain.ValidationError{Msg: "quantity must be positive"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE events_ticket_types
		SET available_tickets = available_tickets - $2,
		    booked_tickets = booked_tickets + $2,
		    updated_at = now()
		WHERE id = $1 AND available_tickets >= $2`, ticketTypeID, qty)
	if err != nil {
		return classify("ledger.reserve", err)
	}
	if cmd.RowsAffected() == 0 {
		tt, err := r.GetByID(ctx, ticketTypeID)
		if err != nil {
			return err
		}
		return &domain.InsufficientInventoryError{TicketTypeID: ticketTypeID, Requested: qty, Available: tt.AvailableTickets}
	}
	return nil
}

// Release moves qty tickets from booked back to available. The conditional
// write refuses to push booked below zero or available above total; when
// that happens the counters are clamped into range and the violation is
// reported as a PermanentStoreError, because it means an upstream double
// release or a resize raced the ledger.
func (r *PGTicketTypeRepository) Release(ctx context.Context, ticketTypeID int64, qty int) error {
	if qty <= 0 {
		return &domain.ValidationError{Msg: "quantity must be positive"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE events_ticket_types
		SET available_tickets = available_tickets + $2,
		    booked_tickets = booked_tickets - $2,
		    updated_at = now()
		WHERE id = $1 AND booked_tickets >= $2 AND available_tickets + $2 <= total_tickets`, ticketTypeID, qty)
	if err != nil {
		return classify("ledger.release", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	// The unclamped release did not apply: either the row is gone or the
	// counters no longer add up.
	if _, err := r.GetByID(ctx, ticketTypeID); err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		UPDATE events_ticket_types
		SET available_tickets = LEAST(total_tickets, available_tickets + $2),
		    booked_tickets = GREATEST(0, booked_tickets - $2),
		    updated_at = now()
		WHERE id = $1`, ticketTypeID, qty)
	if err != nil {
		return classify("ledger.release", err)
	}

	log.Printf("INVARIANT VIOLATION: release of %d tickets on ticket type %d required clamping", qty, ticketTypeID)
	return &domain.PermanentStoreError{
		Op:  "ledger.release",
		Err: fmt.Errorf("release of %d on ticket type %d would cross counter bounds", qty, ticketTypeID),
	}
}

var _ TicketTypeRepository = (*PGTicketTypeRepository)(nil)
