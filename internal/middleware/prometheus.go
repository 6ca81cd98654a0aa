package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycinema/screening-engine/internal/metrics"
)

// Prometheus records request counts and latency per method and route.
// The route template (c.Path()) is used instead of the raw URL so the
// label cardinality stays bounded.
func Prometheus(m *metrics.Metrics) echo.MiddlewareFunc {
	if m == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			method := c.Request().Method
			path := c.Path()
			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
