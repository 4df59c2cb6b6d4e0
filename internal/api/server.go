package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"studiodesk/internal/adapters/config"
	"studiodesk/internal/api/health"
	"studiodesk/internal/api/middleware"
	"studiodesk/internal/api/ui"
	"studiodesk/internal/metrics"
	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	HTTP      config.HTTPConfig
	RateLimit config.RateLimitConfig
	CacheTTL  time.Duration
}

// Deps are the services behind the routes. Cache and Limiter are optional.
type Deps struct {
	Assistant Assistant
	Support   *support.Service
	Dashboard *dashboard.Service
	Health    *health.Handler
	Cache     middleware.ResponseStore
	Limiter   middleware.TokenBucket
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, deps Deps, log *logger.Logger) *Server {
	log = log.With("component", "http_server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	if cfg.HTTP.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
			Timeout: cfg.HTTP.RequestTimeout,
			Skipper: func(c echo.Context) bool {
				switch c.Path() {
				case "/metrics", "/live", "/health", "/ready":
					return true
				}
				return false
			},
		}))
	}

	h := &handlers{
		assistant:      deps.Assistant,
		support:        deps.Support,
		dashboard:      deps.Dashboard,
		sessionHeader:  cfg.HTTP.SessionHeader,
		defaultSession: cfg.HTTP.DefaultSession,
	}

	limiter := middleware.RateLimit(deps.Limiter, middleware.RateLimitConfig{
		PerMinute: cfg.RateLimit.AgentPerMinute,
		Burst:     cfg.RateLimit.Burst,
		Prefix:    "rl:agent",
	}, log)
	e.POST("/support/query", h.supportQuery, limiter)
	e.POST("/dashboard/query", h.dashboardQuery, limiter)

	test := e.Group("/test")
	test.GET("/search_clients", h.searchClients)
	test.GET("/orders_by_client", h.ordersByClient)
	test.GET("/order_by_id", h.orderByID)
	test.GET("/orders_by_status", h.ordersByStatus)
	test.GET("/payment_details", h.paymentDetails)
	test.GET("/pending_dues", h.pendingDues)
	test.GET("/upcoming_classes", h.upcomingClasses)
	test.GET("/classes_by_instructor", h.classesByInstructor)
	test.POST("/create_client_enquiry", h.createClientEnquiry)
	test.POST("/create_order", h.createOrder)

	cached := test.Group("", middleware.ResponseCache(deps.Cache, cfg.CacheTTL, log))
	cached.GET("/total_revenue", h.totalRevenue)
	cached.GET("/outstanding_payments", h.outstandingPayments)
	cached.GET("/client_counts", h.clientCounts)
	cached.GET("/new_clients_this_month", h.newClientsThisMonth)
	cached.GET("/enrollment_trends", h.enrollmentTrends)
	cached.GET("/top_services", h.topServices)
	cached.GET("/completion_rates", h.completionRates)
	cached.GET("/attendance_percentage", h.attendancePercentage)

	if deps.Health != nil {
		deps.Health.Register(e)
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, ui.Index())
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Infow("HTTP server configured", "addr", httpServer.Addr)

	return &Server{
		echo:       e,
		httpServer: httpServer,
		log:        log,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}

// errorHandler renders every unhandled error as {"error": message}
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else {
			log.Errorw("Unhandled request error", "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": message})
	}
}
