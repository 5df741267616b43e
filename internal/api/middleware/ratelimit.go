package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yash-miyani/natours/internal/api/metrics"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// RateLimit caps requests per client IP on API paths. A counter-store
// failure fails open: slightly weaker limiting beats refusing all traffic.
func RateLimit(limiter ports.RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/api") {
				return next(c)
			}

			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.Inc()
				return domain.TooManyRequests("Too many requests from this IP, Please try again in an hour")
			}

			return next(c)
		}
	}
}
