package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"eventtickets/internal/domain"
	"eventtickets/internal/kafka"
	"eventtickets/internal/repository"
	"eventtickets/monitoring"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingUseCase interface {
	CreateBookingsForTickets(ctx context.Context, input CreateBookingsInput) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error)
	GetBookingsByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	GetBookingsByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error)
}

// Ledger owns the availability counters. Reserve must be a conditional
// write: at most the available quantity may ever be reserved across
// concurrent callers. Injected so tests run against an in-memory fake.
type Ledger interface {
	Reserve(ctx context.Context, ticketTypeID int64, qty int) error
	Release(ctx context.Context, ticketTypeID int64, qty int) error
}

// Catalog is the read-only view of ticket types used to resolve selections
// and snapshot names and prices.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketType, error)
}

type Cache interface {
	InvalidateTicketTypes(ctx context.Context, eventID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings     repository.BookingRepository
	catalog      Catalog
	ledger       Ledger
	cache        Cache
	producer     Producer
	eventsTopic  string
	releaseTopic string
	storeRetries int
}

// CreateBookingsInput is one checkout: the payment is already confirmed by
// the gateway before this call, so the whole selection either books or the
// caller gets an error with nothing applied.
type CreateBookingsInput struct {
	EventID     int64
	UserID      int64
	Selections  map[int64]int
	PaymentRef  string
	TotalAmount decimal.Decimal
}

type BookingServiceOption func(*BookingService)

// WithReleaseTopic enables the durable release queue used when the ledger
// cannot be compensated in-process after a cancellation.
func WithReleaseTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.releaseTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog Catalog,
	ledger Ledger,
	cache Cache,
	producer Producer,
	eventsTopic string,
	storeRetries int,
	opts ...BookingServiceOption,
) *BookingService {
	if storeRetries < 1 {
		storeRetries = 3
	}
	service := &BookingService{
		bookings:     bookings,
		catalog:      catalog,
		ledger:       ledger,
		cache:        cache,
		producer:     producer,
		eventsTopic:  eventsTopic,
		storeRetries: storeRetries,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBookingsForTickets books a multi-ticket-type selection as one
// all-or-nothing unit. Each reservation is a conditional ledger write; any
// failure releases everything already reserved in this batch before the
// error surfaces, so no partial booking set is ever visible.
func (s *BookingService) CreateBookingsForTickets(ctx context.Context, input CreateBookingsInput) ([]domain.Booking, error) {
	start := time.Now()

	if len(input.Selections) == 0 {
		return nil, &domain.ValidationError{Msg: "at least one ticket type must be selected"}
	}
	for id, qty := range input.Selections {
		if id <= 0 {
			return nil, &domain.ValidationError{Msg: "invalid ticket type id"}
		}
		if qty <= 0 {
			return nil, &domain.ValidationError{Msg: fmt.Sprintf("quantity for ticket type %d must be positive", id)}
		}
	}
	if input.PaymentRef == "" {
		return nil, &domain.PaymentNotConfirmedError{Msg: "payment reference is required"}
	}
	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, &domain.PaymentNotConfirmedError{Msg: "paid amount must be positive"}
	}

	// Deterministic order keeps compensation predictable and avoids
	// deadlock-prone reserve orderings between concurrent batches.
	ids := make([]int64, 0, len(input.Selections))
	for id := range input.Selections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	types := make(map[int64]*domain.TicketType, len(ids))
	expected := decimal.Zero
	for _, id := range ids {
		var tt *domain.TicketType
		err := repository.WithRetry(ctx, s.storeRetries, func() error {
			var gerr error
			tt, gerr = s.catalog.GetByID(ctx, id)
			return gerr
		})
		if err != nil {
			return nil, err
		}
		if tt.EventID != input.EventID {
			return nil, &domain.NotFoundError{Resource: "ticket type", ID: id}
		}

		qty := input.Selections[id]
		// Advisory pre-check; the ledger repeats it atomically below.
		if tt.AvailableTickets < qty {
			monitoring.RecordInventoryConflict(input.EventID)
			return nil, &domain.InsufficientInventoryError{TicketTypeID: id, Requested: qty, Available: tt.AvailableTickets}
		}

		expected = expected.Add(tt.Price.Mul(decimal.NewFromInt(int64(qty))))
		types[id] = tt
	}

	if !input.TotalAmount.Equal(expected) {
		return nil, &domain.PaymentNotConfirmedError{
			Msg: fmt.Sprintf("paid amount %s does not match ticket prices %s", input.TotalAmount, expected),
		}
	}

	reserved := make([]int64, 0, len(ids))
	for _, id := range ids {
		qty := input.Selections[id]
		err := repository.WithRetry(ctx, s.storeRetries, func() error {
			return s.ledger.Reserve(ctx, id, qty)
		})
		if err != nil {
			s.compensate(ctx, reserved, input.Selections)
			var insufficient *domain.InsufficientInventoryError
			if errors.As(err, &insufficient) {
				monitoring.RecordInventoryConflict(input.EventID)
			}
			return nil, err
		}
		reserved = append(reserved, id)
	}

	batchRef := uuid.NewString()
	bookings := make([]*domain.Booking, 0, len(ids))
	for _, id := range ids {
		tt := types[id]
		qty := input.Selections[id]
		bookings = append(bookings, &domain.Booking{
			EventID:        input.EventID,
			UserID:         input.UserID,
			TicketTypeID:   id,
			TicketTypeName: tt.Name,
			Quantity:       qty,
			PaymentRef:     input.PaymentRef,
			TotalAmount:    tt.Price.Mul(decimal.NewFromInt(int64(qty))),
			Status:         domain.BookingStatusConfirmed,
		})
	}

	if err := repository.WithRetry(ctx, s.storeRetries, func() error {
		return s.bookings.CreateBatch(ctx, bookings)
	}); err != nil {
		s.compensate(ctx, reserved, input.Selections)
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTicketTypes(ctx, input.EventID)
	}

	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		s.publishBookingEvent(ctx, "booking_confirmed", batchRef, b)
		out = append(out, *b)
	}

	monitoring.RecordBookingsCreated(input.EventID, len(out))
	monitoring.ObserveBatchCommit(time.Since(start).Seconds())
	return out, nil
}

// compensate releases every reservation already applied in a failed batch.
// A release that keeps failing transiently goes to the durable queue; the
// batch as a whole still reports its original error.
func (s *BookingService) compensate(ctx context.Context, reserved []int64, selections map[int64]int) {
	for _, id := range reserved {
		qty := selections[id]
		err := repository.WithRetry(ctx, s.storeRetries, func() error {
			return s.ledger.Release(ctx, id, qty)
		})
		if err == nil {
			continue
		}
		log.Printf("WARNING: compensating release of %d tickets on ticket type %d failed: %v", qty, id, err)
		if domain.IsTransient(err) {
			s.queueRelease(ctx, kafka.ReleaseTask{TicketTypeID: id, Quantity: qty})
		}
	}
}

// CancelBooking reverses the ledger effect of a confirmed booking. The
// status flip is a conditional write and commits first; the release then
// runs with bounded retries and falls back to the durable queue, so the only
// reachable transient state is "cancelled but not yet released".
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error) {
	var current *domain.Booking
	err := repository.WithRetry(ctx, s.storeRetries, func() error {
		var gerr error
		current, gerr = s.bookings.GetByID(ctx, bookingID)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	if !current.CanCancel(actor) {
		return nil, &domain.UnauthorizedError{Msg: "booking belongs to another user"}
	}
	switch current.Status {
	case domain.BookingStatusCancelled:
		return nil, &domain.AlreadyCancelledError{BookingID: bookingID}
	case domain.BookingStatusCompleted:
		return nil, &domain.ValidationError{Msg: "completed booking cannot be cancelled"}
	}

	var updated *domain.Booking
	err = repository.WithRetry(ctx, s.storeRetries, func() error {
		var uerr error
		updated, uerr = s.bookings.UpdateStatusIfConfirmed(ctx, bookingID, domain.BookingStatusCancelled)
		return uerr
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Lost a race; report whichever terminal state won.
			b, gerr := s.bookings.GetByID(ctx, bookingID)
			if gerr != nil {
				return nil, gerr
			}
			if b.Status == domain.BookingStatusCancelled {
				return nil, &domain.AlreadyCancelledError{BookingID: bookingID}
			}
			return nil, &domain.ValidationError{Msg: "completed booking cannot be cancelled"}
		}
		return nil, err
	}

	relErr := repository.WithRetry(ctx, s.storeRetries, func() error {
		return s.ledger.Release(ctx, updated.TicketTypeID, updated.Quantity)
	})
	if relErr != nil {
		var permanent *domain.PermanentStoreError
		if errors.As(relErr, &permanent) {
			// Counters were clamped by the ledger; retrying would repeat
			// the violation. Operator attention, not a queue entry.
			monitoring.RecordInvariantClamp()
			log.Printf("release for cancelled booking %d hit an invariant violation: %v", bookingID, relErr)
		} else {
			log.Printf("WARNING: release for cancelled booking %d failed, queueing: %v", bookingID, relErr)
			s.queueRelease(ctx, kafka.ReleaseTask{
				BookingID:    updated.ID,
				EventID:      updated.EventID,
				TicketTypeID: updated.TicketTypeID,
				Quantity:     updated.Quantity,
			})
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTicketTypes(ctx, updated.EventID)
	}
	s.publishBookingEvent(ctx, "booking_cancelled", uuid.NewString(), updated)
	monitoring.RecordBookingCancelled(updated.EventID)
	return updated, nil
}

func (s *BookingService) GetBookingByID(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error) {
	var b *domain.Booking
	err := repository.WithRetry(ctx, s.storeRetries, func() error {
		var gerr error
		b, gerr = s.bookings.GetByID(ctx, bookingID)
		return gerr
	})
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != b.UserID {
		return nil, &domain.UnauthorizedError{Msg: "booking belongs to another user"}
	}
	return b, nil
}

func (s *BookingService) GetBookingsByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := repository.WithRetry(ctx, s.storeRetries, func() error {
		var lerr error
		bookings, lerr = s.bookings.ListByUser(ctx, userID)
		return lerr
	})
	return bookings, err
}

func (s *BookingService) GetBookingsByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := repository.WithRetry(ctx, s.storeRetries, func() error {
		var lerr error
		bookings, lerr = s.bookings.ListByEvent(ctx, eventID)
		return lerr
	})
	return bookings, err
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType, batchRef string, b *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:           eventType,
		BatchRef:       batchRef,
		BookingID:      b.ID,
		EventID:        b.EventID,
		UserID:         b.UserID,
		TicketTypeID:   b.TicketTypeID,
		TicketTypeName: b.TicketTypeName,
		Quantity:       b.Quantity,
		PaymentRef:     b.PaymentRef,
		TotalAmount:    b.TotalAmount,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, batchRef, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", eventType, b.ID, err)
	}
}

func (s *BookingService) queueRelease(ctx context.Context, task kafka.ReleaseTask) {
	if s.producer == nil || s.releaseTopic == "" {
		log.Printf("WARNING: no release queue configured, dropping release of %d tickets on ticket type %d", task.Quantity, task.TicketTypeID)
		return
	}
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	if err := s.producer.Publish(ctx, s.releaseTopic, task.TaskID, task); err != nil {
		log.Printf("WARNING: failed to queue release for ticket type %d: %v", task.TicketTypeID, err)
		return
	}
	monitoring.RecordReleaseRetryQueued()
}

var _ BookingUseCase = (*BookingService)(nil)
