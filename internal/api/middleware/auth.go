package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/api/token"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// Context keys set by SessionToken.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// SessionToken validates the bearer token and checks it still belongs to the
// identity signed in to the session. A token issued before a logout or to a
// different account is rejected.
func SessionToken(tokens TokenParser, sessions ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			snap := sessions.Snapshot()
			if !snap.Authenticated() || snap.Profile.ID != claims.Subject {
				return echo.NewHTTPError(http.StatusUnauthorized, "session is not active")
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, string(claims.Role))

			return next(c)
		}
	}
}
