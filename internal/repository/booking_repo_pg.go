package repository

import (
	"context"
	"errors"
	"time"

	"eventtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreateBatch(ctx context.Context, bookings []*domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error)
	UpdateStatusIfConfirmed(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewBookingRepository(db *pgxpool.Pool, timeout time.Duration) BookingRepository {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &PGBookingRepository{db: db, timeout: timeout}
}

const bookingColumns = `id, event_id, user_id, ticket_type_id, ticket_type_name, quantity, payment_ref, total_amount::text, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var amount string
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.TicketTypeID, &b.TicketTypeName, &b.Quantity, &b.PaymentRef, &amount, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimalFromStore(amount)
	if err != nil {
		return nil, err
	}
	b.TotalAmount = parsed
	return &b, nil
}

// CreateBatch inserts every booking of one checkout inside a single
// transaction. Either the whole confirmed set becomes visible or none of it
// does; generated ids and timestamps are written back into the given
// bookings.
func (r *PGBookingRepository) CreateBatch(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return &domain.ValidationError{Msg: "no bookings to create"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify("bookings.create_batch", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range bookings {
		if err := tx.QueryRow(ctx, `
			INSERT INTO bookings (event_id, user_id, ticket_type_id, ticket_type_name, quantity, payment_ref, total_amount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
			RETURNING id, created_at, updated_at`,
			b.EventID, b.UserID, b.TicketTypeID, b.TicketTypeName, b.Quantity, b.PaymentRef, b.TotalAmount.String(), b.Status).
			Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return classify("bookings.create_batch", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("bookings.create_batch", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "booking", ID: id}
		}
		return nil, classify("bookings.get", err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGBookingRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE event_id=$1 ORDER BY created_at DESC`, eventID)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, arg int64) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, classify("bookings.list", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, classify("bookings.list", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("bookings.list", err)
	}
	return bookings, nil
}

// UpdateStatusIfConfirmed flips a booking out of confirmed in one
// conditional write. A zero-row update means the booking either does not
// exist or already left confirmed; the caller distinguishes the two with
// GetByID after receiving ErrStatusConflict.
func (r *PGBookingRepository) UpdateStatusIfConfirmed(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !domain.ValidTransition(domain.BookingStatusConfirmed, status) {
		return nil, &domain.ValidationError{Msg: "invalid status transition"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		UPDATE bookings SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3
		RETURNING `+bookingColumns, id, status, domain.BookingStatusConfirmed)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, classify("bookings.update_status", err)
	}
	return b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
