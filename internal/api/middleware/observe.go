// Package middleware holds the echo middleware of the HTTP facade.
package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"studiodesk/internal/metrics"
	"studiodesk/pkg/logger"
)

// RequestLogger logs every request through zap and records Prometheus request metrics.
// Handler errors are passed to the echo error handler first so the logged status is final.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	log = log.With("component", "http")

	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		HandleError:  true,
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogRemoteIP:  true,
		LogStatus:    true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(v.Method, route, v.Status, v.Latency)

			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			switch {
			case v.Error != nil && v.Status >= 500:
				log.Warnw("Request failed", append(fields, "error", v.Error)...)
			case v.Error != nil:
				log.Debugw("Request rejected", append(fields, "error", v.Error)...)
			default:
				log.Infow("Request served", fields...)
			}
			return nil
		},
	})
}
