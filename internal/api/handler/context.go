package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/api/middleware"
)

// ctxUserID returns the profile id the SessionToken middleware verified.
// An empty value means the route was mounted without the middleware.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it. Both failures are reported as 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
