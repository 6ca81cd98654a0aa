package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role claim values the server recognizes.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// RequireRole enforces that the authenticated user carries one of the
// given roles.  It assumes JWTAuth already stored the "role" claim in
// the context; a missing or unexpected role yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build the allow-set once at registration time; per-request work
	// is a single map lookup.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// The type assertion fails both when the claim is absent
			// (unauthenticated route misconfiguration) and when it
			// holds a non-string; either way the caller is not
			// authorized.
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
