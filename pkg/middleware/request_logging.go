package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

// RequestLogger returns middleware that logs requests using zerolog
// and updates OpenTelemetry-backed counters.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			// Attach request-scoped logger
			logger := log.With().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Str("user_agent", req.UserAgent()).
				Logger()

			ctx := logger.WithContext(req.Context())
			c.SetRequest(req.WithContext(ctx))

			// Render the error here so the logged status is the one sent.
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			duration := time.Since(start)
			labels := metrics.Labels{
				"method": req.Method,
				"route":  routeOf(c),
				"status": intToClass(status),
			}
			reg.Inc(ctx, metrics.HTTPRequests, labels, 1)

			// Log according to status
			if status >= 500 {
				logger.Error().
					Int("status", status).
					Dur("duration", duration).
					Msg("http request failed")
				reg.Inc(ctx, metrics.HTTPRequestErrors, labels, 1)
			} else {
				logger.Info().
					Int("status", status).
					Int64("bytes_out", c.Response().Size).
					Dur("duration", duration).
					Msg("http request served")
			}

			return nil
		}
	}
}

// routeOf returns the matched route pattern, keeping counter labels bounded.
func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}

func intToClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
