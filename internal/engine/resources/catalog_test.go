package resources

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/engine/forms"
	"adminconsole/internal/platform/models"
)

func TestCRUDRequests(t *testing.T) {
	c := NewCatalog("/integrations")

	req := c.Organizations.List.Request(models.ListQuery{Page: 2, SearchTerm: "acme"})
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/organizations", req.Path)
	assert.Equal(t, "page=2&searchTerm=acme", req.Query.Encode())

	req = c.Organizations.List.Request(models.ListQuery{})
	assert.Empty(t, req.Query)

	req = c.Tasks.Get.Request("t1")
	assert.Equal(t, "/tasks/t1", req.Path)

	req = c.Contacts.Update.Request(Patch[forms.ContactForm]{ID: "c1", Body: forms.ContactForm{Name: "Ann"}})
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/contacts/c1", req.Path)
	assert.Equal(t, forms.ContactForm{Name: "Ann"}, req.Body)

	req = c.Assets.Delete.Request("a/1")
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/assets/a%2F1", req.Path)
}

func TestTags(t *testing.T) {
	c := NewCatalog("/integrations")

	page := models.Page[models.Plan]{Data: []models.Plan{{ID: "p1"}, {ID: "p2"}}}
	assert.Equal(t, []cache.Tag{
		cache.ListTag(TagPlan),
		cache.InstanceTag(TagPlan, "p1"),
		cache.InstanceTag(TagPlan, "p2"),
	}, c.Plans.List.Provides(models.ListQuery{}, page))

	assert.Equal(t, []cache.Tag{cache.InstanceTag(TagPlan, "p1")}, c.Plans.Get.Provides("p1", models.Plan{}))
	assert.Equal(t, []cache.Tag{cache.ListTag(TagPlan)}, c.Plans.Create.Invalidates(forms.PlanForm{}, models.Plan{}))
	assert.Equal(t, []cache.Tag{cache.InstanceTag(TagPlan, "p1")}, c.Plans.Update.Invalidates(Patch[forms.PlanForm]{ID: "p1"}, models.Plan{}))
	// a delete shifts every page, including ones that never held the row
	assert.Equal(t, []cache.Tag{cache.ListTag(TagPlan)}, c.Plans.Delete.Invalidates("p1", models.Plan{}))

	assert.Equal(t,
		[]cache.Tag{cache.InstanceTag(TagUser, "u1"), cache.ListTag(TagProfile)},
		c.Users.Update.Invalidates(Patch[forms.UpdateUserForm]{ID: "u1"}, models.User{}))

	assert.Equal(t,
		[]cache.Tag{cache.ListTag(TagPayment), cache.InstanceTag(TagOrganization, "o1")},
		c.Payments.Create.Invalidates(forms.PaymentForm{Organization: "o1"}, models.Payment{}))
}

func TestReadOnly(t *testing.T) {
	c := NewCatalog("/integrations")
	assert.True(t, c.Logs.ReadOnly())
	assert.True(t, c.EmailLogs.ReadOnly())
	assert.False(t, c.Organizations.ReadOnly())
}

func TestExtraEndpoints(t *testing.T) {
	c := NewCatalog("integrations/")

	tests := []struct {
		name   string
		method string
		path   string
		got    func() (string, string)
	}{
		{"refund", http.MethodPost, "/payments/p1/refund", func() (string, string) {
			r := c.Refund.Request(Patch[forms.RefundForm]{ID: "p1"})
			return r.Method, r.Path
		}},
		{"change plan", http.MethodPatch, "/organizations/o1/plan", func() (string, string) {
			r := c.ChangePlan.Request(Patch[forms.PlanChangeForm]{ID: "o1"})
			return r.Method, r.Path
		}},
		{"feature access", http.MethodPut, "/users/u1/feature-access", func() (string, string) {
			r := c.SetFeatureAccess.Request(Patch[forms.FeatureAccessUpdate]{ID: "u1"})
			return r.Method, r.Path
		}},
		{"wallet", http.MethodPost, "/users/u1/wallet", func() (string, string) {
			r := c.AdjustWallet.Request(Patch[forms.WalletForm]{ID: "u1"})
			return r.Method, r.Path
		}},
		{"wallet transactions", http.MethodGet, "/users/u1/wallet-transactions", func() (string, string) {
			r := c.WalletTransactions.Request(UserList{UserID: "u1"})
			return r.Method, r.Path
		}},
		{"resend email", http.MethodPost, "/integrations/email-logs/e1/resend", func() (string, string) {
			r := c.ResendEmail.Request("e1")
			return r.Method, r.Path
		}},
		{"ticket reply", http.MethodPost, "/support-tickets/s1/replies", func() (string, string) {
			r := c.ReplyTicket.Request(Patch[forms.TicketReplyForm]{ID: "s1"})
			return r.Method, r.Path
		}},
		{"me", http.MethodGet, "/auth/me", func() (string, string) {
			r := c.Me.Request(struct{}{})
			return r.Method, r.Path
		}},
		{"login", http.MethodPost, "/auth/login", func() (string, string) {
			r := c.Login.Request(forms.LoginForm{})
			return r.Method, r.Path
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, path := tt.got()
			assert.Equal(t, tt.method, method)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestWalletInvalidatesItsTransactions(t *testing.T) {
	c := NewCatalog("/integrations")
	provided := c.WalletTransactions.Provides(UserList{UserID: "u1"}, models.Page[models.WalletTransaction]{})
	invalidated := c.AdjustWallet.Invalidates(Patch[forms.WalletForm]{ID: "u1"}, models.WalletTransaction{})

	assert.Subset(t, invalidated, provided)
}
