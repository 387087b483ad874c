package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventtickets/internal/domain"
	"eventtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase.
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBookingsForTickets(ctx context.Context, input booking.CreateBookingsInput) ([]domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBookingByID(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBookingsByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBookingsByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testContext(t *testing.T, method, path string, body interface{}, actor domain.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(actorKey, actor)
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	created := []domain.Booking{{
		ID: 1, EventID: 3, UserID: 7, TicketTypeID: 10,
		TicketTypeName: "General Admission", Quantity: 2,
		PaymentRef: "pay_1", TotalAmount: decimal.NewFromInt(100),
		Status: domain.BookingStatusConfirmed,
	}}

	c, w := testContext(t, http.MethodPost, "/api/events/3/bookings", gin.H{
		"tickets":      map[string]int{"10": 2},
		"payment_ref":  "pay_1",
		"total_amount": 100,
	}, domain.Actor{UserID: 7, Role: "user"})
	c.Params = gin.Params{{Key: "eventId", Value: "3"}}

	mockService.On("CreateBookingsForTickets", mock.Anything, mock.MatchedBy(func(input booking.CreateBookingsInput) bool {
		return input.EventID == 3 && input.UserID == 7 && input.Selections[10] == 2 && input.PaymentRef == "pay_1"
	})).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"General Admission"`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_InsufficientInventory(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, http.MethodPost, "/api/events/3/bookings", gin.H{
		"tickets":      map[string]int{"10": 5},
		"payment_ref":  "pay_1",
		"total_amount": 250,
	}, domain.Actor{UserID: 7, Role: "user"})
	c.Params = gin.Params{{Key: "eventId", Value: "3"}}

	mockService.On("CreateBookingsForTickets", mock.Anything, mock.Anything).
		Return(nil, &domain.InsufficientInventoryError{TicketTypeID: 10, Requested: 5, Available: 1}).Once()

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["available"])
	assert.Equal(t, float64(10), resp["ticket_type_id"])
}

func TestBookingHandler_create_InvalidEventID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := testContext(t, http.MethodPost, "/api/events/abc/bookings", nil, domain.Actor{UserID: 7})
	c.Params = gin.Params{{Key: "eventId", Value: "abc"}}

	handler.create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	cancelled := &domain.Booking{ID: 5, EventID: 3, UserID: 7, Status: domain.BookingStatusCancelled}

	c, w := testContext(t, http.MethodDelete, "/api/bookings/5", nil, domain.Actor{UserID: 7, Role: "user"})
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	mockService.On("CancelBooking", mock.Anything, int64(5), domain.Actor{UserID: 7, Role: "user"}).Return(cancelled, nil).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cancelled"`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_AlreadyCancelled(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, http.MethodDelete, "/api/bookings/5", nil, domain.Actor{UserID: 7, Role: "user"})
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	mockService.On("CancelBooking", mock.Anything, int64(5), mock.Anything).
		Return(nil, &domain.AlreadyCancelledError{BookingID: 5}).Once()

	handler.cancel(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_cancel_Unauthorized(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, http.MethodDelete, "/api/bookings/5", nil, domain.Actor{UserID: 9, Role: "user"})
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	mockService.On("CancelBooking", mock.Anything, int64(5), mock.Anything).
		Return(nil, &domain.UnauthorizedError{Msg: "booking belongs to another user"}).Once()

	handler.cancel(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_listMine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	bookings := []domain.Booking{{ID: 1, UserID: 7, Status: domain.BookingStatusConfirmed}}

	c, w := testContext(t, http.MethodGet, "/api/my/bookings", nil, domain.Actor{UserID: 7, Role: "user"})
	mockService.On("GetBookingsByUser", mock.Anything, int64(7)).Return(bookings, nil).Once()

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestWriteError_Taxonomy(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &domain.ValidationError{Msg: "bad input"}, http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Resource: "booking", ID: 1}, http.StatusNotFound},
		{"insufficient", &domain.InsufficientInventoryError{TicketTypeID: 1, Requested: 2, Available: 0}, http.StatusConflict},
		{"already cancelled", &domain.AlreadyCancelledError{BookingID: 1}, http.StatusConflict},
		{"unauthorized", &domain.UnauthorizedError{Msg: "nope"}, http.StatusForbidden},
		{"payment", &domain.PaymentNotConfirmedError{Msg: "mismatch"}, http.StatusPaymentRequired},
		{"transient", &domain.TransientStoreError{Op: "op", Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"permanent", &domain.PermanentStoreError{Op: "op", Err: errors.New("broken")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
