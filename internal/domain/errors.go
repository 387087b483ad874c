// Error taxonomy shared by the ledger, the booking orchestrator and the HTTP
// layer. Handlers map these types onto status codes, so services must return
// them unwrapped or wrapped with %w.
package domain

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InsufficientInventoryError carries the current available count so the
// caller can re-offer a smaller quantity.
type InsufficientInventoryError struct {
	TicketTypeID int64
	Requested    int
	Available    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %d: requested %d tickets, %d available", e.TicketTypeID, e.Requested, e.Available)
}

type AlreadyCancelledError struct {
	BookingID int64
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("booking %d is already cancelled", e.BookingID)
}

type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string { return e.Msg }

type PaymentNotConfirmedError struct {
	Msg string
}

func (e *PaymentNotConfirmedError) Error() string { return e.Msg }

// TransientStoreError marks a store failure worth retrying (timeouts, broken
// connections). The operation must not be assumed to have partially
// committed.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error in %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// PermanentStoreError marks a non-retryable failure, typically an invariant
// violation that needs operator attention.
type PermanentStoreError struct {
	Op  string
	Err error
}

func (e *PermanentStoreError) Error() string {
	return fmt.Sprintf("permanent store error in %s: %v", e.Op, e.Err)
}

func (e *PermanentStoreError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}
