package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eventtickets/api"
	"eventtickets/config"
	"eventtickets/internal/service/booking"
	"eventtickets/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, ticketSvc tickets.TicketTypeUseCase, bookingSvc booking.BookingUseCase) error {
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, ticketSvc, bookingSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, ticketSvc tickets.TicketTypeUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("/api", api.JWTAuth(cfg.Auth.JWTSecret))
	api.NewTicketTypeHandler(ticketSvc).Register(authed)
	api.NewBookingHandler(bookingSvc).Register(authed)

	return router
}
