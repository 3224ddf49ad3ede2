package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/api/metrics"
	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "storefront_session"

// sessionKey is the echo context key the guard stores the verified session
// under.
const sessionKey = "session"

// publicPaths are reachable without any session. Matched exactly.
var publicPaths = map[string]struct{}{
	"/":             {},
	"/login":        {},
	"/register":     {},
	"/verify-email": {},
	"/about":        {},
	"/contact":      {},
	"/blogs":        {},
}

// publicPrefixes are namespaces that carry their own access control (the API
// group) or none at all (static assets, operational endpoints).
var publicPrefixes = []string{
	"/api/",
	"/static/",
	"/assets/",
	"/health",
	"/metrics",
	"/swagger",
}

// GuardConfig wires the route guard's collaborators. Audit may be nil; the
// guard's verdict never depends on it.
type GuardConfig struct {
	Sessions  ports.SessionService
	Audit     ports.AuditRecorder
	Log       zerolog.Logger
	LoginPath string
}

// Guard gates every non-public page request on a valid customer session.
// Exactly one of three outcomes is produced per request:
//
//   - pass-through, with the verified session stored in the echo context;
//   - 303 to the login page with callbackUrl set to the original path, when
//     the session is absent or fails verification (the two are deliberately
//     indistinguishable);
//   - 303 to the login page with error=AccessDenied and no callbackUrl, when
//     the session verifies but the role is not "customer".
//
// Classification runs before any token work so public pages and static
// assets never pay for verification.
func Guard(cfg GuardConfig) echo.MiddlewareFunc {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isPublicPath(path) {
				return next(c)
			}

			sess, err := cfg.Sessions.Verify(readSessionToken(c))
			if err != nil {
				metrics.GuardDecisionsTotal.WithLabelValues("redirect_login").Inc()
				audit(cfg.Audit, "", "", path, domain.AccessUnauthorized)
				return c.Redirect(http.StatusSeeOther, loginPath+"?callbackUrl="+url.QueryEscape(path))
			}

			if !sess.IsCustomer() {
				cfg.Log.Warn().
					Str("role", sess.Role).
					Str("path", path).
					Msg("non-customer session rejected by route guard")
				metrics.GuardDecisionsTotal.WithLabelValues("access_denied").Inc()
				audit(cfg.Audit, sess.UserID, sess.Role, path, domain.AccessDenied)
				return c.Redirect(http.StatusSeeOther, loginPath+"?error=AccessDenied")
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// isPublicPath classifies a request path. The mapping is total: any path not
// matched here is protected. A dot in the path is treated as a static asset
// (favicon.ico, main.css, chunk hashes), which keeps assets loading even
// before the session subsystem is configured.
func isPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.Contains(path, ".")
}

// readSessionToken pulls the raw token from the session cookie. An absent
// cookie yields the empty string, which Verify rejects.
func readSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func audit(recorder ports.AuditRecorder, subject, role, path, decision string) {
	if recorder == nil {
		return
	}
	recorder.Record(domain.AccessEvent{
		Subject:   subject,
		Role:      role,
		Path:      path,
		Decision:  decision,
		Timestamp: time.Now().UTC(),
	})
}

// SessionFromContext returns the session the guard (or RequireCustomer)
// stored for this request, or nil when none was stored.
func SessionFromContext(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}
