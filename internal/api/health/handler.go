package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"studiodesk/pkg/logger"
)

// PingFunc reports whether one dependency is reachable
type PingFunc func(ctx context.Context) error

// Check is one dependency probed by the readiness and health endpoints.
// Optional checks degrade /health but never fail /ready.
type Check struct {
	Name     string
	Required bool
	Ping     PingFunc
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      []Check
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, serviceName, version string, checks ...Check) *Handler {
	sorted := append([]Check(nil), checks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &Handler{
		log:         log.With("component", "health"),
		checks:      sorted,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Uptime      string                     `json:"uptime"`
	Timestamp   string                     `json:"timestamp"`
	Checks      map[string]ComponentHealth `json:"checks"`
	ErrorDetail string                     `json:"error_detail,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	Required     bool   `json:"required"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Register mounts /health, /ready and /live
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.HandleHealth)
	e.GET("/ready", h.HandleReadiness)
	e.GET("/live", h.HandleLiveness)
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness fails when any required dependency is down
func (h *Handler) HandleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	for _, check := range h.checks {
		if check.Required && checks[check.Name].Status != "healthy" {
			status.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		h.log.Warnw("Readiness check failed", "checks", checks)
	}
	return c.JSON(code, status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	checks := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	for _, check := range h.checks {
		if checks[check.Name].Status == "healthy" {
			continue
		}
		if check.Required {
			status.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
		status.Status = "degraded" // still 200
	}
	return c.JSON(code, status)
}

func (h *Handler) status(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
}

func (h *Handler) run(ctx context.Context) map[string]ComponentHealth {
	out := make(map[string]ComponentHealth, len(h.checks))
	for _, check := range h.checks {
		out[check.Name] = h.probe(ctx, check)
	}
	return out
}

func (h *Handler) probe(ctx context.Context, check Check) ComponentHealth {
	start := time.Now()
	err := check.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Health check failed", "component_name", check.Name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			Required:     check.Required,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		Required:     check.Required,
		ResponseTime: elapsed.String(),
	}
}
