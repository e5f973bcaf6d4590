package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "adminconsole/internal/api/context"
	"adminconsole/internal/api/handlers"
	"adminconsole/internal/api/middleware"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/models"
	"adminconsole/internal/transport"
)

type Dependencies struct {
	SessionHandler *handlers.SessionHandler
	ActionsHandler *handlers.ActionsHandler
	HealthHandler  *handlers.HealthHandler
	StatusHandler  *handlers.StatusHandler
	AuditHandler   *handlers.AuditHandler

	SessionMiddleware *middleware.SessionMiddleware
	TenantMiddleware  *middleware.TenantMiddleware
	FeatureGate       *middleware.FeatureGate
	RateLimiter       *middleware.RateLimiter

	Engine   *query.Engine
	Catalog  *resources.Catalog
	Audit    *audit.Logger
	Currency string
}

// Services are the long-lived parts the console's handlers are built from.
type Services struct {
	Engine   *query.Engine
	Catalog  *resources.Catalog
	Sessions *auth.Sessions
	Audit    *audit.Logger
	Monitor  *transport.Monitor
	DB       *sql.DB
	Redis    handlers.Pinger
	Limiter  *middleware.RateLimiter
	Currency string
}

func NewDependencies(s Services) *Dependencies {
	me := func(ctx context.Context) (models.User, error) {
		return query.Query(ctx, s.Engine, s.Catalog.Me, struct{}{})
	}
	return &Dependencies{
		SessionHandler:    handlers.NewSessionHandler(s.Engine, s.Catalog, s.Sessions, s.Audit, s.Currency),
		ActionsHandler:    handlers.NewActionsHandler(s.Engine, s.Catalog, s.Audit, s.Currency),
		HealthHandler:     handlers.NewHealthHandler(s.DB, s.Redis, s.Monitor),
		StatusHandler:     handlers.NewStatusHandler(s.Monitor),
		AuditHandler:      handlers.NewAuditHandler(s.Audit),
		SessionMiddleware: middleware.NewSessionMiddleware(s.Sessions),
		TenantMiddleware:  middleware.NewTenantMiddleware(),
		FeatureGate:       middleware.NewFeatureGate(me),
		RateLimiter:       s.Limiter,
		Engine:            s.Engine,
		Catalog:           s.Catalog,
		Audit:             s.Audit,
		Currency:          s.Currency,
	}
}

type routes struct {
	router *httprouter.Router
	deps   *Dependencies
}

// signedIn runs handler behind the session, tenant and rate limit checks.
func (rt routes) signedIn(handler http.HandlerFunc, kind string, extra ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	mws := []func(http.HandlerFunc) http.HandlerFunc{
		rt.deps.SessionMiddleware.Handle,
		rt.deps.TenantMiddleware.Handle,
		rt.deps.RateLimiter.RateLimit(kind),
	}
	return chain(handler, append(mws, extra...)...)
}

// gated is signedIn plus a feature access check.
func (rt routes) gated(handler http.HandlerFunc, kind, feature, action string) httprouter.Handle {
	return rt.signedIn(handler, kind, rt.deps.FeatureGate.Require(feature, action))
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteFailure(w, &transport.Error{Status: http.StatusNotFound, Data: models.ErrorBody{Message: "Route not found"}})
	})
	rt := routes{router: router, deps: deps}
	c := deps.Catalog

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Session
	router.POST("/console/session",
		chain(deps.SessionHandler.Login, deps.RateLimiter.RateLimit(middleware.LimitWrite)))
	router.DELETE("/console/session", rt.signedIn(deps.SessionHandler.Logout, middleware.LimitWrite))
	router.PUT("/console/session/integration-token", rt.signedIn(deps.SessionHandler.SetIntegrationToken, middleware.LimitWrite))
	router.GET("/console/me", rt.signedIn(deps.SessionHandler.Me, middleware.LimitRead))

	// Backend health banner
	router.GET("/console/status", rt.signedIn(deps.StatusHandler.Get, middleware.LimitRead))
	router.DELETE("/console/status", rt.signedIn(deps.StatusHandler.Clear, middleware.LimitWrite))

	router.GET("/console/audit-logs", rt.gated(deps.AuditHandler.List, middleware.LimitRead, "logs", "view"))

	// Entity collections
	userRow := func(u models.User) any { return view.User(u, deps.Currency) }
	mount(rt, c.Organizations, func(o models.Organization) any { return view.Organization(o) })
	mount(rt, c.Users, userRow)
	mount(rt, c.Payments, func(p models.Payment) any { return view.Payment(p) })
	mount(rt, c.Plans, nil)
	mount(rt, c.Contacts, nil)
	mount(rt, c.Categories, nil)
	mount(rt, c.Templates, nil)
	mount(rt, c.SupportTickets, nil)
	mount(rt, c.Assets, nil)
	mount(rt, c.Tasks, func(t models.Task) any { return view.Task(t) })
	mount(rt, c.Logs, nil)
	mount(rt, c.EmailLogs, nil)

	// Operations
	a := deps.ActionsHandler
	router.PATCH("/console/organizations/:id/plan", rt.gated(a.ChangePlan, middleware.LimitWrite, "organizations", "edit"))
	router.PUT("/console/users/:id/feature-access", rt.gated(a.SetFeatureAccess, middleware.LimitWrite, "users", "edit"))
	router.POST("/console/users/:id/wallet", rt.gated(a.AdjustWallet, middleware.LimitWrite, "users", "edit"))
	router.GET("/console/users/:id/wallet-transactions", rt.gated(a.WalletTransactions, middleware.LimitRead, "users", "view"))
	router.POST("/console/payments/:id/refund", rt.gated(a.Refund, middleware.LimitWrite, "payments", "edit"))
	router.POST("/console/email-logs/:id/resend", rt.gated(a.ResendEmail, middleware.LimitWrite, "email-logs", "edit"))
	router.POST("/console/support-tickets/:id/replies", rt.gated(a.ReplyTicket, middleware.LimitWrite, "support-tickets", "edit"))

	return router
}

// mount registers the list, get and watch routes of a collection plus its
// writes when it has them. The feature checked is the collection name.
func mount[T models.Entity, C, U any](rt routes, res resources.Resource[T, C, U], present func(T) any) {
	h := handlers.NewResourceHandler(rt.deps.Engine, res, present, rt.deps.Audit)
	base := "/console/" + res.Name

	rt.router.GET(base, rt.gated(h.List, middleware.LimitRead, res.Name, "view"))
	rt.router.GET(base+"/:id", rt.gated(h.Get, middleware.LimitRead, res.Name, "view"))
	rt.router.GET("/console/watch/"+res.Name, rt.gated(h.Watch, middleware.LimitRead, res.Name, "view"))

	if res.Create != nil {
		rt.router.POST(base, rt.gated(h.Create, middleware.LimitWrite, res.Name, "create"))
	}
	if res.Update != nil {
		rt.router.PATCH(base+"/:id", rt.gated(h.Update, middleware.LimitWrite, res.Name, "edit"))
	}
	if res.Delete != nil {
		rt.router.DELETE(base+"/:id", rt.gated(h.Delete, middleware.LimitWrite, res.Name, "delete"))
	}
}

// chain applies middlewares outermost first.
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// wrap converts an http.HandlerFunc to an httprouter.Handle.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
