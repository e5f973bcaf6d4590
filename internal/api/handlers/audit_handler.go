package handlers

import (
	"net/http"
	"strconv"

	"adminconsole/internal/api/middleware"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/transport"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(l *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: l}
}

// List returns recent console actions, confined to the caller's tenant scope.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 500 {
		limit = 500
	}

	entries, err := h.audit.Recent(middleware.ScopeFrom(r).Organization, limit)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "", entries, nil)
}

// record logs a console action with the status it was answered with. A nil
// logger records nothing.
func record(l *audit.Logger, r *http.Request, action, resource, id string, err error, okStatus int) {
	if l == nil {
		return
	}
	status := okStatus
	if err != nil {
		status = transport.StatusOf(err)
	}
	var actor audit.Actor
	if sess := middleware.SessionFrom(r); sess != nil {
		actor = audit.Actor{UserID: sess.UserID, Organization: sess.Organization}
	}
	l.Record(r.Context(), r, actor, action, resource, id, status)
}
