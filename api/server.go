package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"courier-bridge-service/workers/shipments"
	"courier-bridge-service/workers/shipments/repositories"
	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// OrderSource is the storefront as seen by the API.
type OrderSource interface {
	ProcessingOrders() []woocommerce.Order
	Orders(ctx context.Context, ids []int64) ([]woocommerce.Order, error)
}

// Server is the local control surface for the operator.
type Server struct {
	e         *echo.Echo
	logger    *zap.Logger
	lifecycle *shipments.Lifecycle
	repo      *repositories.Repository
	orders    OrderSource
	now       func() time.Time
}

// New builds the router. orders may be nil when no store is configured.
func New(logger *zap.Logger, lifecycle *shipments.Lifecycle, repo *repositories.Repository, orders OrderSource) *Server {
	s := &Server{
		e:         echo.New(),
		logger:    logger.Named("api"),
		lifecycle: lifecycle,
		repo:      repo,
		orders:    orders,
		now:       time.Now,
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Info("request", fields...)
			return nil
		},
	}))

	s.e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := s.e.Group("/api")
	api.GET("/shipments", s.listShipments)
	api.POST("/shipments/manual", s.createManual)
	api.GET("/shipments/by-voucher/:voucher", s.getShipmentByVoucher)
	api.GET("/shipments/:id", s.getShipment)
	api.DELETE("/shipments/:id", s.deleteShipment)
	api.POST("/shipments/:id/label", s.retryLabel)
	api.POST("/shipments/:id/cancel", s.cancelVoucher)
	api.GET("/shipments/:id/tracking", s.trackShipment)

	api.GET("/orders", s.listOrders)
	api.POST("/orders/vouchers", s.createOrderVouchers)

	api.GET("/pickup-lists", s.listPickupLists)
	api.POST("/pickup-lists", s.createPickupList)
	api.GET("/pickup-lists/:no", s.getPickupList)
	api.POST("/pickup-lists/:no/pdf", s.exportPickupListPDF)
	api.POST("/pickup-lists/:no/complete", s.completePickup)

	api.GET("/stats/today", s.todayStats)
	api.GET("/stats/period", s.periodStats)
	api.GET("/activity", s.recentActivity)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Control API listening", zap.String("addr", addr))
		errCh <- s.e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
