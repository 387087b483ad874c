package repository

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"eventtickets/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewTicketTypeRepository(pool, time.Second))
	assert.NotNil(t, NewBookingRepository(pool, time.Second))
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"network failure", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"constraint violation", errors.New("violates check constraint"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify("reserve tickets", tc.err)
			assert.Error(t, err)
			assert.Equal(t, tc.transient, domain.IsTransient(err))
		})
	}

	assert.NoError(t, classify("reserve tickets", nil))
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return &domain.TransientStoreError{Op: "release", Err: context.DeadlineExceeded}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	permanent := &domain.PermanentStoreError{Op: "release", Err: errors.New("constraint")}
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := &domain.TransientStoreError{Op: "release", Err: context.DeadlineExceeded}
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return transient
	})

	assert.Equal(t, transient, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_CanceledContextStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, 5, func() error {
		calls++
		return &domain.TransientStoreError{Op: "release", Err: context.DeadlineExceeded}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecimalFromStore(t *testing.T) {
	d, err := decimalFromStore("149.90")
	assert.NoError(t, err)
	assert.Equal(t, "149.9", d.String())

	_, err = decimalFromStore("not-a-number")
	var permanent *domain.PermanentStoreError
	assert.ErrorAs(t, err, &permanent)
}
