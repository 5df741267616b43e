package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// ContextKeyUser is the echo context key holding the resolved *domain.User.
const ContextKeyUser = "user"

// tokenFromRequest extracts the session token from the Authorization header
// or, failing that, from the jwt cookie.
func tokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

// Protect rejects unauthenticated requests. It verifies the token, loads the
// user, and rejects tokens issued before the user's last password change.
func Protect(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return domain.Unauthorized("You are not logged in! Please login to get access")
			}

			user, err := auth.ResolveUser(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// IsLoggedIn resolves the current user for rendered pages but never rejects:
// any failure leaves the request anonymous.
func IsLoggedIn(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie("jwt"); err == nil && cookie.Value != "" {
				if user, err := auth.ResolveUser(c.Request().Context(), cookie.Value); err == nil {
					c.Set(ContextKeyUser, user)
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Protect or IsLoggedIn, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(ContextKeyUser).(*domain.User)
	return user
}
