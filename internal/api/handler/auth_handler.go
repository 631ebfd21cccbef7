package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
	"github.com/sponsormatch/matchbot/internal/security"
)

type TokenIssuer interface {
	Issue(p *domain.UserProfile) (string, time.Time, error)
}

type AuthHandler struct {
	sessions  ports.SessionManager
	tokens    TokenIssuer
	sanitizer *security.Sanitizer
}

func NewAuthHandler(sessions ports.SessionManager, tokens TokenIssuer, sanitizer *security.Sanitizer) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, sanitizer: sanitizer}
}

// Login signs in with email and password and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, profile)
}

// Register creates a creator or brand account and signs it in.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	name := h.sanitizer.Text(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	profile, err := h.sessions.Register(c.Request().Context(), req.Email, req.Password, name, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, profile)
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile merges the given fields into the signed-in profile.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	if _, err := ctxUserID(c); err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	update := req.toDomain()
	if update.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}
	h.sanitizer.ProfileUpdate(&update)

	profile, err := h.sessions.UpdateProfile(c.Request().Context(), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: profile})
}

// Session returns the current session snapshot.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.SessionSnapshot
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Snapshot())
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, profile *domain.UserProfile) error {
	tkn, exp, err := h.tokens.Issue(profile)
	if err != nil {
		return err
	}
	return c.JSON(status, authResponse{Token: tkn, ExpiresAt: exp, User: profile})
}
