package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/api/middleware"
	"github.com/sponsormatch/matchbot/internal/core/access"
	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

type ViewHandler struct {
	gate     *access.Gate
	sessions ports.SessionReader
}

func NewViewHandler(gate *access.Gate, sessions ports.SessionReader) *ViewHandler {
	return &ViewHandler{gate: gate, sessions: sessions}
}

type viewResponse struct {
	View    string              `json:"view"`
	Path    string              `json:"path"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}

type navigationResponse struct {
	State domain.SessionState `json:"state"`
	Items []access.Route      `json:"items"`
}

// Render serves a view the ViewGate middleware allowed.
//
// @Summary      Open a view
// @Tags         views
// @Produce      json
// @Param        path  path      string  true  "View path"
// @Success      200   {object}  viewResponse
// @Success      202   {object}  map[string]string
// @Failure      302
// @Failure      404   {object}  map[string]string
// @Router       /views/{path} [get]
func (h *ViewHandler) Render(c echo.Context) error {
	route, ok := c.Get(middleware.ContextRoute).(access.Route)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown view")
	}
	snap, _ := c.Get(middleware.ContextSnapshot).(domain.SessionSnapshot)

	return c.JSON(http.StatusOK, viewResponse{
		View:    route.Name,
		Path:    route.Path,
		Profile: snap.Profile,
	})
}

// Navigation lists the dashboard menu entries for the current session.
//
// @Summary      Dashboard navigation
// @Tags         views
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Router       /navigation [get]
func (h *ViewHandler) Navigation(c echo.Context) error {
	snap := h.sessions.Snapshot()
	items := h.gate.Navigation(snap)
	if items == nil {
		items = []access.Route{}
	}
	return c.JSON(http.StatusOK, navigationResponse{State: snap.State, Items: items})
}
