package api

import (
	"net/http"
	"strconv"
	"time"

	"eventtickets/internal/domain"
	"eventtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingsRequest struct {
	Tickets     map[int64]int   `json:"tickets"`
	PaymentRef  string          `json:"payment_ref"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type bookingResponse struct {
	ID             int64  `json:"id"`
	EventID        int64  `json:"event_id"`
	UserID         int64  `json:"user_id"`
	TicketTypeID   int64  `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type_name"`
	Quantity       int    `json:"quantity"`
	PaymentRef     string `json:"payment_ref"`
	TotalAmount    string `json:"total_amount"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/events/:eventId/bookings", h.create)
	router.GET("/events/:eventId/bookings", RequireAdmin(), h.listByEvent)
	router.GET("/my/bookings", h.listMine)
	router.GET("/bookings/:id", h.get)
	router.DELETE("/bookings/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req createBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)
	bookings, err := h.service.CreateBookingsForTickets(c.Request.Context(), booking.CreateBookingsInput{
		EventID:     eventID,
		UserID:      actor.UserID,
		Selections:  req.Tickets,
		PaymentRef:  req.PaymentRef,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookings": toBookingResponses(bookings)})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id, currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(*cancelled))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBookingByID(c.Request.Context(), id, currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	bookings, err := h.service.GetBookingsByUser(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(bookings)})
}

func (h *BookingHandler) listByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	bookings, err := h.service.GetBookingsByEvent(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(bookings)})
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		EventID:        b.EventID,
		UserID:         b.UserID,
		TicketTypeID:   b.TicketTypeID,
		TicketTypeName: b.TicketTypeName,
		Quantity:       b.Quantity,
		PaymentRef:     b.PaymentRef,
		TotalAmount:    b.TotalAmount.String(),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}
