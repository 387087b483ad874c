package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	testCases := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		ok   bool
	}{
		{"confirmed to cancelled", BookingStatusConfirmed, BookingStatusCancelled, true},
		{"confirmed to completed", BookingStatusConfirmed, BookingStatusCompleted, true},
		{"cancelled is terminal", BookingStatusCancelled, BookingStatusConfirmed, false},
		{"cancelled to completed rejected", BookingStatusCancelled, BookingStatusCompleted, false},
		{"completed is terminal", BookingStatusCompleted, BookingStatusCancelled, false},
		{"completed to confirmed rejected", BookingStatusCompleted, BookingStatusConfirmed, false},
		{"no self transition", BookingStatusCancelled, BookingStatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, ValidTransition(tc.from, tc.to))
		})
	}
}

func TestBooking_CanCancel(t *testing.T) {
	b := &Booking{ID: 1, UserID: 7}

	assert.True(t, b.CanCancel(Actor{UserID: 7, Role: "user"}))
	assert.True(t, b.CanCancel(Actor{UserID: 99, Role: RoleAdmin}))
	assert.False(t, b.CanCancel(Actor{UserID: 99, Role: "user"}))
}
