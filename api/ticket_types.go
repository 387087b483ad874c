package api

import (
	"net/http"
	"strconv"

	"eventtickets/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketTypeHandler struct {
	service tickets.TicketTypeUseCase
}

func NewTicketTypeHandler(service tickets.TicketTypeUseCase) *TicketTypeHandler {
	return &TicketTypeHandler{service: service}
}

func (h *TicketTypeHandler) Register(router *gin.RouterGroup) {
	router.GET("/events/:eventId/ticket-types", h.listByEvent)
	router.GET("/ticket-types/:id", h.get)
}

func (h *TicketTypeHandler) listByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	types, err := h.service.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_types": types})
}

func (h *TicketTypeHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tt, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tt)
}
