package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/pkg/metrics"
	"github.com/sponsormatch/matchbot/internal/core/access"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// Context keys set by ViewGate.
const (
	ContextRoute    = "route"
	ContextSnapshot = "snapshot"
)

// ViewGate resolves the wildcard path to a view and applies the access gate
// to the current session. Only a Render decision reaches next; the route and
// the snapshot it was decided on are stored in the context.
func ViewGate(gate *access.Gate, sessions ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route, ok := gate.Lookup("/" + c.Param("*"))
			if !ok {
				return echo.NewHTTPError(http.StatusNotFound, "unknown view")
			}

			snap := sessions.Snapshot()
			decision, target := gate.Evaluate(snap, route)
			metrics.GateDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case access.Wait:
				return c.JSON(http.StatusAccepted, map[string]string{"status": "loading"})
			case access.RedirectToLogin, access.RedirectToDefault:
				return c.Redirect(http.StatusFound, target)
			}

			c.Set(ContextRoute, route)
			c.Set(ContextSnapshot, snap)
			return next(c)
		}
	}
}
