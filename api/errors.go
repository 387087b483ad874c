package api

import (
	"errors"
	"net/http"

	"eventtickets/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps the service error taxonomy onto HTTP. The taxonomy must
// survive the boundary: insufficient inventory carries the current available
// count so the client can re-offer a smaller quantity.
func writeError(c *gin.Context, err error) {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientInventoryError
		cancelled    *domain.AlreadyCancelledError
		unauthorized *domain.UnauthorizedError
		payment      *domain.PaymentNotConfirmedError
		transient    *domain.TransientStoreError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":          insufficient.Error(),
			"ticket_type_id": insufficient.TicketTypeID,
			"available":      insufficient.Available,
		})
	case errors.As(err, &cancelled):
		c.JSON(http.StatusConflict, gin.H{"error": cancelled.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": unauthorized.Error()})
	case errors.As(err, &payment):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": payment.Error()})
	case errors.As(err, &transient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary store failure, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
