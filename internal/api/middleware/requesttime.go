package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// ContextKeyRequestTime is the echo context key holding the receipt timestamp.
const ContextKeyRequestTime = "requestedAt"

// RequestTime stamps each request with its receipt time for later use in
// handlers (audit, cache-control decisions).
func RequestTime() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyRequestTime, time.Now().UTC())
			return next(c)
		}
	}
}

// RequestedAt returns the receipt timestamp stamped by RequestTime.
func RequestedAt(c echo.Context) time.Time {
	t, _ := c.Get(ContextKeyRequestTime).(time.Time)
	return t
}
