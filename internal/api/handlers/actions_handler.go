package handlers

import (
	"net/http"

	"adminconsole/internal/api/middleware"
	"adminconsole/internal/engine/forms"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/models"
)

// ActionsHandler serves the operations that are not plain CRUD.
type ActionsHandler struct {
	engine   *query.Engine
	catalog  *resources.Catalog
	audit    *audit.Logger
	currency string
}

func NewActionsHandler(e *query.Engine, c *resources.Catalog, l *audit.Logger, currency string) *ActionsHandler {
	return &ActionsHandler{engine: e, catalog: c, audit: l, currency: currency}
}

// patch runs a mutation addressed by :id with a validated body.
func patch[F, R any](h *ActionsHandler, w http.ResponseWriter, r *http.Request, def query.MutationDef[resources.Patch[F], R], action, resource string, present func(R) any) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	form, ok := decodeForm[F](w, r)
	if !ok {
		return
	}

	result, err := query.Mutate(r.Context(), h.engine, def, resources.Patch[F]{ID: id, Body: form})
	record(h.audit, r, action, resource, id, err, http.StatusOK)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "", present(result), nil)
}

func (h *ActionsHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	patch(h, w, r, h.catalog.ChangePlan, "change-plan", "organizations", func(o models.Organization) any {
		return view.Organization(o)
	})
}

func (h *ActionsHandler) SetFeatureAccess(w http.ResponseWriter, r *http.Request) {
	patch(h, w, r, h.catalog.SetFeatureAccess, "set-feature-access", "users", func(u models.User) any {
		return view.User(u, h.currency)
	})
}

func (h *ActionsHandler) AdjustWallet(w http.ResponseWriter, r *http.Request) {
	patch(h, w, r, h.catalog.AdjustWallet, "adjust-wallet", "users", func(t models.WalletTransaction) any {
		return t
	})
}

func (h *ActionsHandler) Refund(w http.ResponseWriter, r *http.Request) {
	patch(h, w, r, h.catalog.Refund, "refund", "payments", func(p models.Payment) any {
		return view.Payment(p)
	})
}

func (h *ActionsHandler) ReplyTicket(w http.ResponseWriter, r *http.Request) {
	patch(h, w, r, h.catalog.ReplyTicket, "reply", "support-tickets", func(t models.SupportTicket) any {
		return t
	})
}

func (h *ActionsHandler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	result, err := query.Mutate(r.Context(), h.engine, h.catalog.ResendEmail, id)
	record(h.audit, r, "resend", "email-logs", id, err, http.StatusOK)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "Email queued", result, nil)
}

func (h *ActionsHandler) WalletTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q, verrs := forms.Query(models.ParseListQuery(r.URL.Query()))
	if verrs != nil {
		middleware.WriteFailure(w, verrs)
		return
	}

	page, err := query.Query(r.Context(), h.engine, h.catalog.WalletTransactions, resources.UserList{UserID: id, Query: q})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "", page.Data, &page.Meta)
}
