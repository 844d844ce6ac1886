package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
)

// RequestMetrics counts handled requests per registered route.
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			metrics.IncHTTP(c.Path())
			return err
		}
	}
}
