package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// RestrictTo enforces role-based access control. It must run after Protect.
func RestrictTo(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.Unauthorized("You are not logged in! Please login to get access")
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.Forbidden("You don't have permission to perform this action on this resource")
			}
			return next(c)
		}
	}
}
