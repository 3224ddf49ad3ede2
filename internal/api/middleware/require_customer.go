package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velstore/storefront-gateway/internal/core/ports"
)

// RequireCustomer protects API routes. The page guard deliberately skips the
// /api namespace, so data endpoints verify the session cookie themselves and
// answer with JSON statuses instead of redirects.
func RequireCustomer(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := sessions.Verify(readSessionToken(c))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}
			if !sess.IsCustomer() {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}
