package router

import (
	"net/http"
	"time"

	"github.com/Renal37/fuel-orders/internal/middlewares"
	"github.com/Renal37/fuel-orders/internal/models"
)

type sessionResponse struct {
	Subject     string        `json:"subject"`
	Roles       []models.Role `json:"roles"`
	ExpiresAt   *time.Time    `json:"expiresAt,omitempty"`
	LandingPage string        `json:"landingPage"`
}

func newSessionResponse(session *models.Session) sessionResponse {
	roles := session.Roles
	if roles == nil {
		roles = []models.Role{}
	}

	return sessionResponse{
		Subject:     session.Subject,
		Roles:       roles,
		ExpiresAt:   session.Expiry,
		LandingPage: session.LandingPage(),
	}
}

func Register(w http.ResponseWriter, r *http.Request) {
	data, ok := middlewares.GetParsedJSONData[models.Registration](w, r)
	if !ok {
		return
	}

	authService := middlewares.GetServiceFromContext[models.AuthService](w, r, middlewares.AuthServiceKey)
	if authService == nil {
		return
	}

	if err := (*authService).Register(r.Context(), data); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Login opens a session and keeps its token in the session cookie.
func Login(cookie middlewares.SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := middlewares.GetParsedJSONData[models.Credentials](w, r)
		if !ok {
			return
		}

		authService := middlewares.GetServiceFromContext[models.AuthService](w, r, middlewares.AuthServiceKey)
		if authService == nil {
			return
		}

		session, err := (*authService).Login(r.Context(), data)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cookie.Set(w, session)
		middlewares.EncodeJSONResponse(w, http.StatusOK, newSessionResponse(session))
	}
}

func Logout(cookie middlewares.SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetSession(w http.ResponseWriter, r *http.Request) {
	session := middlewares.GetSessionFromContext(w, r)
	if session == nil {
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, newSessionResponse(session))
}
