package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/shortlet/api"
	"github.com/Domenick1991/shortlet/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Properties   *api.PropertyHandler
	Availability *api.AvailabilityHandler
	Bookings     *api.BookingHandler
	Payments     *api.PaymentHandler
	Reviews      *api.ReviewHandler
	Admin        *api.AdminHandler
	Health       map[string]HealthCheck
}

// Run serves HTTP and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg config.HTTPConfig, h Handlers) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http %s: %w", cfg.Address, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg config.HTTPConfig, h Handlers) *gin.Engine {
	api.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/health", health(h.Health))

	public := router.Group("/api")
	properties := public.Group("/properties")
	h.Properties.Register(properties)
	h.Availability.Register(properties)
	h.Bookings.Register(public.Group("/bookings"))
	h.Payments.Register(public.Group("/payments"))
	h.Reviews.Register(public.Group("/reviews"))

	admin := public.Group("/admin")
	h.Admin.Register(admin)

	secured := admin.Group("", h.Admin.Middleware())
	h.Properties.RegisterAdmin(secured.Group("/properties"))
	h.Bookings.RegisterAdmin(secured.Group("/bookings"))
	h.Bookings.RegisterReconcile(secured.Group("/availability"))
	h.Reviews.RegisterAdmin(secured.Group("/reviews"))

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}
