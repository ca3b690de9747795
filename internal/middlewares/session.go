package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/models"
	"go.uber.org/zap"
)

type sessionFieldType string

const sessionField sessionFieldType = "sessionField"

const SessionCookieName = "token"

// SessionCookie keeps the bearer token in an HttpOnly cookie.
type SessionCookie struct {
	Secure bool
}

func (c SessionCookie) Set(w http.ResponseWriter, session *models.Session) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if session.Expiry != nil {
		cookie.Expires = *session.Expiry
	}

	http.SetCookie(w, cookie)
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest reads the token from the session cookie, then from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	return ""
}

// SessionGateConfig sends visitors without a usable session to the login page.
type SessionGateConfig struct {
	cookie SessionCookie
	roles  []models.Role
	now    func() time.Time
}

func SessionGate(cookie SessionCookie) *SessionGateConfig {
	return &SessionGateConfig{cookie: cookie, now: time.Now}
}

// WithRoles requires one of roles. Without roles any valid session passes.
func (g *SessionGateConfig) WithRoles(roles ...models.Role) *SessionGateConfig {
	g.roles = roles
	return g
}

func (g *SessionGateConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtService := GetServiceFromContext[models.JWTService](w, r, JwtServiceKey)
		if jwtService == nil {
			return
		}

		session := (*jwtService).Decode(TokenFromRequest(r))

		if !session.IsValid(g.now()) {
			g.cookie.Clear(w)
			http.Redirect(w, r, models.LandingLogin, http.StatusSeeOther)
			return
		}

		if len(g.roles) > 0 && !session.HasAnyRole(g.roles...) {
			logger.Log.Info("session lacks required role",
				zap.String("subject", session.Subject),
				zap.String("uri", r.RequestURI),
			)
			http.Redirect(w, r, models.LandingLogin, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionField, session)))
	})
}

func GetSessionFromContext(w http.ResponseWriter, r *http.Request) *models.Session {
	session, ok := r.Context().Value(sessionField).(*models.Session)

	if !ok {
		http.Error(w, "Could not retrieve session from context", http.StatusInternalServerError)
		return nil
	}

	return session
}
