// Shared repository error helpers. Store failures are split into the
// transient/permanent halves of the service error taxonomy so callers know
// what is worth retrying.
package repository

import (
	"context"
	"errors"
	"net"

	"eventtickets/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStatusConflict signals that a conditional status update matched no row
// because the booking is no longer in the expected status. The service layer
// re-reads the booking to find out which terminal state won the race.
var ErrStatusConflict = errors.New("booking status changed concurrently")

// classify wraps a raw store failure into the taxonomy. Timeouts, canceled
// contexts and connection-level failures are transient and safe to retry
// because every write here is a single conditional statement or a rolled
// back transaction. Everything else needs operator attention.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	if pgconn.SafeToRetry(err) {
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	return &domain.PermanentStoreError{Op: op, Err: err}
}
