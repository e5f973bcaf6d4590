package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/models"
)

const validID = "64b7f0c2a1b2c3d4e5f60718"

func paths(errs validator.Errors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Path
	}
	return out
}

func TestOrganizationForm(t *testing.T) {
	t.Run("normalizes and accepts", func(t *testing.T) {
		got, errs := validator.Validate(OrganizationForm{
			Name:    "  Acme Corp ",
			Email:   " Billing@Acme.COM ",
			Phone:   "(123) 456-7890",
			Plan:    validID,
			Address: &AddressForm{City: " Dhaka "},
		})
		require.Empty(t, errs)
		assert.Equal(t, "Acme Corp", got.Name)
		assert.Equal(t, "billing@acme.com", got.Email)
		assert.Equal(t, "1234567890", got.Phone)
		assert.Equal(t, "Dhaka", got.Address.City)
	})

	t.Run("reports field paths", func(t *testing.T) {
		_, errs := validator.Validate(OrganizationForm{
			Name:    "A",
			Email:   "not-an-email",
			Plan:    "12345",
			Status:  "archived",
			Billing: &BillingForm{CardNumber: "4111 1111 1111 1112"},
		})
		assert.ElementsMatch(t, []string{"name", "email", "plan", "status", "billingInfo.cardNumber"}, paths(errs))
	})
}

func TestObjectIDFormat(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{validID, true},
		{"64B7F0C2A1B2C3D4E5F60718", true},
		{"64b7f0c2a1b2c3d4e5f6071", false},
		{"64b7f0c2a1b2c3d4e5f607189", false},
		{"zzb7f0c2a1b2c3d4e5f60718", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, errs := validator.Validate(PlanChangeForm{Plan: tt.id})
			assert.Equal(t, tt.valid, len(errs) == 0)
			if !tt.valid {
				require.Len(t, errs, 1)
				assert.Equal(t, "plan", errs[0].Path)
				assert.Equal(t, "plan must be a valid 24-character hex id", errs[0].Message)
			}
		})
	}
}

func TestCreateUserForm_Messages(t *testing.T) {
	_, errs := validator.Validate(CreateUserForm{
		FirstName: "J",
		Email:     "jane@example.com",
		Password:  "short",
		Role:      "root",
	})
	byPath := map[string]string{}
	for _, e := range errs {
		byPath[e.Path] = e.Message
	}
	assert.Equal(t, "firstName must be at least 2 characters", byPath["firstName"])
	assert.Equal(t, "password must be at least 8 characters", byPath["password"])
	assert.Equal(t, "role must be one of: super_admin, admin, manager, user", byPath["role"])
	assert.NotContains(t, byPath, "email")
}

func TestFeatureAccessTree(t *testing.T) {
	_, errs := validator.Validate(FeatureAccessUpdate{FeatureAccess: []FeatureAccessForm{
		{Feature: "contacts", Actions: []string{"view", "create"}},
		{Feature: "billing", Children: []FeatureAccessForm{{Feature: "refunds", Actions: []string{"approve"}}}},
	}})
	require.Len(t, errs, 1)
	assert.Equal(t, "featureAccess[1].children[0].actions[0]", errs[0].Path)

	got, errs := validator.Validate(FeatureAccessUpdate{FeatureAccess: []FeatureAccessForm{
		{Feature: " Contacts ", Actions: []string{" view "}},
	}})
	require.Empty(t, errs)
	assert.Equal(t, "contacts", got.FeatureAccess[0].Model().Feature)
	assert.Equal(t, []string{"view"}, got.FeatureAccess[0].Actions)
}

func TestTemplateForm_SubjectRequiredForEmail(t *testing.T) {
	_, errs := validator.Validate(TemplateForm{Name: "Welcome", Type: "email", Body: "Hi"})
	require.Len(t, errs, 1)
	assert.Equal(t, "subject", errs[0].Path)

	_, errs = validator.Validate(TemplateForm{Name: "Welcome", Type: "sms", Body: "Hi"})
	assert.Empty(t, errs)
}

func TestTaskForm_Status(t *testing.T) {
	_, errs := validator.Validate(TaskForm{Organization: validID, Title: "Ship it", Status: models.TaskToDo})
	assert.Empty(t, errs)

	_, errs = validator.Validate(TaskForm{Organization: validID, Title: "Ship it", Status: "Blocked"})
	require.Len(t, errs, 1)
	assert.Equal(t, "status must be one of: To Do, Ongoing, Completed, Overdue", errs[0].Message)
}

func TestQuery(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	_, errs := Query(models.ListQuery{StartDate: &start, EndDate: &end})
	require.Len(t, errs, 1)
	assert.Equal(t, "endDate", errs[0].Path)

	_, errs = Query(models.ListQuery{Limit: 500, SortOrder: "sideways"})
	assert.ElementsMatch(t, []string{"limit", "sortOrder"}, paths(errs))

	got, errs := Query(models.ListQuery{SearchTerm: "  acme ", SortOrder: "DESC"})
	require.Empty(t, errs)
	assert.Equal(t, "acme", got.SearchTerm)
	assert.Equal(t, models.SortDesc, got.SortOrder)
}

// Re-validating an accepted value must return it unchanged.
func TestRevalidationIsIdempotent(t *testing.T) {
	t.Run("contact", func(t *testing.T) {
		first, errs := validator.Validate(ContactForm{
			Name:  "  Jane Roe ",
			Email: "JANE@Example.com",
			Phone: "+1 (555) 010-9999",
			Tags:  []string{" vip ", "", "lead"},
		})
		require.Empty(t, errs)
		second, errs := validator.Validate(first)
		require.Empty(t, errs)
		assert.Equal(t, first, second)
	})

	t.Run("plan", func(t *testing.T) {
		first, errs := validator.Validate(PlanForm{
			Name:          " Gold ",
			Price:         49,
			Currency:      "usd",
			DurationUnit:  models.DurationMonth,
			DurationValue: 1,
			Features:      []string{"crm", " email "},
		})
		require.Empty(t, errs)
		second, errs := validator.Validate(first)
		require.Empty(t, errs)
		assert.Equal(t, first, second)
		assert.Equal(t, "USD", second.Currency)
	})

	t.Run("organization", func(t *testing.T) {
		first, errs := validator.Validate(OrganizationForm{
			Name:    "Acme",
			Billing: &BillingForm{CardNumber: "4111 1111 1111 1111", Phone: "555-010-9999"},
		})
		require.Empty(t, errs)
		second, errs := validator.Validate(first)
		require.Empty(t, errs)
		assert.Equal(t, first, second)
	})
}

func TestValidate_NonStruct(t *testing.T) {
	_, errs := validator.Validate("plain string")
	require.Len(t, errs, 1)
	assert.Equal(t, "", errs[0].Path)
}
