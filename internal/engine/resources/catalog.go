package resources

import (
	"net/http"
	"strings"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/engine/forms"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/platform/models"
	"adminconsole/internal/transport"
)

// Catalog holds every endpoint the console uses.
type Catalog struct {
	Organizations  Resource[models.Organization, forms.OrganizationForm, forms.OrganizationForm]
	Users          Resource[models.User, forms.CreateUserForm, forms.UpdateUserForm]
	Payments       Resource[models.Payment, forms.PaymentForm, forms.PaymentForm]
	Plans          Resource[models.Plan, forms.PlanForm, forms.PlanForm]
	Contacts       Resource[models.Contact, forms.ContactForm, forms.ContactForm]
	Categories     Resource[models.Category, forms.CategoryForm, forms.CategoryForm]
	Templates      Resource[models.Template, forms.TemplateForm, forms.TemplateForm]
	SupportTickets Resource[models.SupportTicket, forms.TicketForm, forms.TicketForm]
	Assets         Resource[models.Asset, forms.AssetForm, forms.AssetForm]
	Tasks          Resource[models.Task, forms.TaskForm, forms.TaskForm]
	Logs           Resource[models.Log, struct{}, struct{}]
	EmailLogs      Resource[models.EmailLog, struct{}, struct{}]

	Login              query.MutationDef[forms.LoginForm, models.LoginResult]
	Logout             query.MutationDef[struct{}, struct{}]
	Me                 query.QueryDef[struct{}, models.User]
	ChangePlan         query.MutationDef[Patch[forms.PlanChangeForm], models.Organization]
	SetFeatureAccess   query.MutationDef[Patch[forms.FeatureAccessUpdate], models.User]
	AdjustWallet       query.MutationDef[Patch[forms.WalletForm], models.WalletTransaction]
	WalletTransactions query.QueryDef[UserList, models.Page[models.WalletTransaction]]
	Refund             query.MutationDef[Patch[forms.RefundForm], models.Payment]
	ResendEmail        query.MutationDef[string, models.EmailLog]
	ReplyTicket        query.MutationDef[Patch[forms.TicketReplyForm], models.SupportTicket]
}

// UserList is a list query scoped to one user.
type UserList struct {
	UserID string           `json:"userId"`
	Query  models.ListQuery `json:"query"`
}

// NewCatalog builds the endpoint set. Calls that need the integration token
// are placed under integrationPrefix.
func NewCatalog(integrationPrefix string) *Catalog {
	integrationPrefix = "/" + strings.Trim(integrationPrefix, "/")

	c := &Catalog{
		Organizations:  crud[models.Organization, forms.OrganizationForm, forms.OrganizationForm]("organizations", TagOrganization, "/organizations"),
		Users:          crud[models.User, forms.CreateUserForm, forms.UpdateUserForm]("users", TagUser, "/users", cache.ListTag(TagProfile)),
		Payments:       crud[models.Payment, forms.PaymentForm, forms.PaymentForm]("payments", TagPayment, "/payments"),
		Plans:          crud[models.Plan, forms.PlanForm, forms.PlanForm]("plans", TagPlan, "/plans"),
		Contacts:       crud[models.Contact, forms.ContactForm, forms.ContactForm]("contacts", TagContact, "/contacts"),
		Categories:     crud[models.Category, forms.CategoryForm, forms.CategoryForm]("categories", TagCategory, "/categories"),
		Templates:      crud[models.Template, forms.TemplateForm, forms.TemplateForm]("templates", TagTemplate, "/templates"),
		SupportTickets: crud[models.SupportTicket, forms.TicketForm, forms.TicketForm]("support-tickets", TagSupportTicket, "/support-tickets"),
		Assets:         crud[models.Asset, forms.AssetForm, forms.AssetForm]("assets", TagAsset, "/assets"),
		Tasks:          crud[models.Task, forms.TaskForm, forms.TaskForm]("tasks", TagTask, "/tasks"),
		Logs:           readOnly[models.Log]("logs", TagLog, "/logs"),
		EmailLogs:      readOnly[models.EmailLog]("email-logs", TagEmailLog, "/email-logs"),
	}

	// a payment moves the organization's plan, so payment creation also
	// refreshes organizations
	c.Payments.Create.Invalidates = func(body forms.PaymentForm, _ models.Payment) []cache.Tag {
		return []cache.Tag{cache.ListTag(TagPayment), cache.InstanceTag(TagOrganization, body.Organization)}
	}

	c.Login = query.MutationDef[forms.LoginForm, models.LoginResult]{
		Name: "login",
		Request: func(f forms.LoginForm) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/auth/login", Body: f}
		},
		Invalidates: func(forms.LoginForm, models.LoginResult) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagProfile)}
		},
	}
	c.Logout = query.MutationDef[struct{}, struct{}]{
		Name: "logout",
		Request: func(struct{}) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/auth/logout"}
		},
	}
	c.Me = query.QueryDef[struct{}, models.User]{
		Name: "me",
		Request: func(struct{}) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/auth/me"}
		},
		Provides: func(_ struct{}, u models.User) []cache.Tag {
			tags := []cache.Tag{cache.ListTag(TagProfile)}
			if u.ID != "" {
				tags = append(tags, cache.InstanceTag(TagUser, u.ID))
			}
			return tags
		},
	}

	c.ChangePlan = query.MutationDef[Patch[forms.PlanChangeForm], models.Organization]{
		Name: "changePlan",
		Request: func(p Patch[forms.PlanChangeForm]) transport.Request {
			return transport.Request{Method: http.MethodPatch, Path: itemPath("/organizations", p.ID) + "/plan", Body: p.Body}
		},
		Invalidates: func(p Patch[forms.PlanChangeForm], _ models.Organization) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagOrganization, p.ID), cache.ListTag(TagPayment)}
		},
	}

	c.SetFeatureAccess = query.MutationDef[Patch[forms.FeatureAccessUpdate], models.User]{
		Name: "setFeatureAccess",
		Request: func(p Patch[forms.FeatureAccessUpdate]) transport.Request {
			return transport.Request{Method: http.MethodPut, Path: itemPath("/users", p.ID) + "/feature-access", Body: p.Body}
		},
		Invalidates: func(p Patch[forms.FeatureAccessUpdate], _ models.User) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagUser, p.ID), cache.ListTag(TagProfile)}
		},
	}

	c.AdjustWallet = query.MutationDef[Patch[forms.WalletForm], models.WalletTransaction]{
		Name: "adjustWallet",
		Request: func(p Patch[forms.WalletForm]) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: itemPath("/users", p.ID) + "/wallet", Body: p.Body}
		},
		Invalidates: func(p Patch[forms.WalletForm], _ models.WalletTransaction) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagUser, p.ID), cache.InstanceTag(TagWallet, p.ID)}
		},
	}
	c.WalletTransactions = query.QueryDef[UserList, models.Page[models.WalletTransaction]]{
		Name: "walletTransactions",
		Request: func(l UserList) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: itemPath("/users", l.UserID) + "/wallet-transactions", Query: l.Query.Values()}
		},
		Provides: func(l UserList, _ models.Page[models.WalletTransaction]) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagWallet, l.UserID)}
		},
	}

	c.Refund = query.MutationDef[Patch[forms.RefundForm], models.Payment]{
		Name: "refund",
		Request: func(p Patch[forms.RefundForm]) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: itemPath("/payments", p.ID) + "/refund", Body: p.Body}
		},
		Invalidates: func(p Patch[forms.RefundForm], _ models.Payment) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagPayment, p.ID)}
		},
	}

	c.ResendEmail = query.MutationDef[string, models.EmailLog]{
		Name: "resendEmail",
		Request: func(id string) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: integrationPrefix + itemPath("/email-logs", id) + "/resend"}
		},
		Invalidates: func(id string, _ models.EmailLog) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagEmailLog, id), cache.ListTag(TagLog)}
		},
	}

	c.ReplyTicket = query.MutationDef[Patch[forms.TicketReplyForm], models.SupportTicket]{
		Name: "replyTicket",
		Request: func(p Patch[forms.TicketReplyForm]) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: itemPath("/support-tickets", p.ID) + "/replies", Body: p.Body}
		},
		Invalidates: func(p Patch[forms.TicketReplyForm], _ models.SupportTicket) []cache.Tag {
			return []cache.Tag{cache.InstanceTag(TagSupportTicket, p.ID)}
		},
	}

	return c
}
