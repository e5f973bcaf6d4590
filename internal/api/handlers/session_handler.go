package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"adminconsole/internal/api/middleware"
	"adminconsole/internal/engine/forms"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/models"
)

type SessionHandler struct {
	engine   *query.Engine
	catalog  *resources.Catalog
	sessions *auth.Sessions
	audit    *audit.Logger
	currency string
	log      zerolog.Logger
}

func NewSessionHandler(e *query.Engine, c *resources.Catalog, sessions *auth.Sessions, l *audit.Logger, currency string) *SessionHandler {
	return &SessionHandler{
		engine:   e,
		catalog:  c,
		sessions: sessions,
		audit:    l,
		currency: currency,
		log:      logger.Component("sessions"),
	}
}

type sessionResponse struct {
	UserID       string      `json:"userId"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	Organization string      `json:"organization,omitempty"`
	ExpiresAt    int64       `json:"expiresAt"`
}

func newSessionResponse(s *models.Session) sessionResponse {
	return sessionResponse{
		UserID:       s.UserID,
		Email:        s.Email,
		Role:         s.Role,
		Organization: s.Organization,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Login signs in against the backend and opens a console session.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm[forms.LoginForm](w, r)
	if !ok {
		return
	}

	result, err := query.Mutate(r.Context(), h.engine, h.catalog.Login, form)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	if result.AccessToken == "" {
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeBackend, "Login response carried no access token", nil)
		return
	}

	sess, err := h.sessions.Create("", result.AccessToken, result.IntegrationToken)
	if err != nil {
		h.log.Warn().Err(err).Str("email", form.Email).Msg("rejected login token")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Login token was not usable", nil)
		return
	}

	http.SetCookie(w, middleware.SessionCookieFor(sess))
	h.log.Info().Str("user_id", sess.UserID).Str("role", string(sess.Role)).Msg("console session opened")
	if h.audit != nil {
		h.audit.Record(auth.WithSession(r.Context(), sess.ID), r, audit.Actor{UserID: sess.UserID, Organization: sess.Organization}, "login", "sessions", sess.ID, http.StatusCreated)
	}

	writeData(w, http.StatusCreated, "Signed in", map[string]any{
		"session": newSessionResponse(sess),
		"user":    result.User,
	}, nil)
}

// Logout ends the backend session, drops every cached read of this console
// session and deletes it.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r)
	ctx := r.Context()

	if _, err := query.Mutate(ctx, h.engine, h.catalog.Logout, struct{}{}); err != nil {
		h.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("backend logout failed")
	}
	dropped := h.engine.Forget(ctx)
	if err := h.sessions.Delete(sess.ID); err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	record(h.audit, r, "logout", "sessions", sess.ID, nil, http.StatusOK)

	http.SetCookie(w, middleware.ExpiredSessionCookie())
	h.log.Info().Str("user_id", sess.UserID).Int("cache_entries", dropped).Msg("console session closed")
	writeData(w, http.StatusOK, "Signed out", nil, nil)
}

// Me returns the signed-in user's profile.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := query.Query(r.Context(), h.engine, h.catalog.Me, struct{}{})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "", map[string]any{
		"session": newSessionResponse(middleware.SessionFrom(r)),
		"user":    view.User(me, h.currency),
	}, nil)
}

// SetIntegrationToken stores a secondary token for integration calls.
func (h *SessionHandler) SetIntegrationToken(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm[forms.IntegrationTokenForm](w, r)
	if !ok {
		return
	}
	sess := middleware.SessionFrom(r)
	err := h.sessions.SetIntegrationToken(sess.ID, form.Token)
	record(h.audit, r, "update", "integration-token", sess.ID, err, http.StatusOK)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "Integration token saved", nil, nil)
}
