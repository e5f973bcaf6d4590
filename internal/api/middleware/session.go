package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "adminconsole/internal/api/context"
	httperr "adminconsole/internal/pkg/errors"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/models"
)

// SessionCookie carries the console session id.
const SessionCookie = "console_session"

type SessionMiddleware struct {
	sessions *auth.Sessions
}

func NewSessionMiddleware(sessions *auth.Sessions) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

func (m *SessionMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			httperr.WriteError(w, http.StatusUnauthorized, httperr.ErrCodeUnauthorized, "Not signed in", nil)
			return
		}

		sess, err := m.sessions.Get(cookie.Value)
		switch {
		case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrExpired):
			http.SetCookie(w, ExpiredSessionCookie())
			httperr.WriteError(w, http.StatusUnauthorized, httperr.ErrCodeUnauthorized, "Session expired, sign in again", nil)
			return
		case err != nil:
			log.Error().Err(err).Msg("failed to load session")
			httperr.WriteError(w, http.StatusInternalServerError, httperr.ErrCodeInternal, "Failed to load session", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Session, sess)
		ctx = auth.WithSession(ctx, sess.ID)
		next(w, r.WithContext(ctx))
	}
}

// SessionFrom returns the session attached by SessionMiddleware.
func SessionFrom(r *http.Request) *models.Session {
	sess, _ := r.Context().Value(apiContext.Session).(*models.Session)
	return sess
}

func SessionCookieFor(sess *models.Session) *http.Cookie {
	maxAge := int(sess.ExpiresAt - sess.CreatedAt)
	if maxAge < 0 {
		maxAge = 0
	}
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{Name: SessionCookie, Value: "", Path: "/", HttpOnly: true, MaxAge: -1}
}
