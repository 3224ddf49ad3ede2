package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velstore/storefront-gateway/internal/api/middleware"
	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

type AuthHandler struct {
	backend       ports.Backend
	sessions      ports.SessionService
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(backend ports.Backend, sessions ports.SessionService, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{
		backend:       backend,
		sessions:      sessions,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

type loginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CallbackURL string `json:"callbackUrl"`
}

type loginResponse struct {
	User     *domain.Session `json:"user"`
	Redirect string          `json:"redirect"`
}

// Login exchanges credentials with the backend API, mints the session
// cookie, and tells the page where to navigate next.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.backend.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	sess := &domain.Session{
		UserID:      result.UserID,
		Name:        result.Name,
		Role:        result.Role,
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(h.sessionTTL),
	}
	token, err := h.sessions.Mint(sess)
	if err != nil {
		return err
	}
	c.SetCookie(h.sessionCookie(token, h.sessionTTL))

	return c.JSON(http.StatusOK, loginResponse{
		User:     sess,
		Redirect: safeCallback(req.CallbackURL),
	})
}

// Logout clears the session cookie. The realtime connection owned by the
// session's relay closes with the page, so there is nothing to tear down
// server-side here.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
}

// Session reports the current session, if any. Pages poll this on load to
// decide whether to show the inactivity notice (session=expired).
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Session
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookie)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	sess, err := h.sessions.Verify(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// safeCallback keeps post-login redirects on-site. Anything that is not a
// local path falls back to the account home.
func safeCallback(callback string) string {
	if callback == "" || !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") {
		return "/account"
	}
	return callback
}
