package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminconsole/internal/platform/models"
)

type signup struct {
	Email string   `json:"email" validate:"required,email"`
	Tags  []string `json:"tags" validate:"max=2"`
	Kind  string   `json:"kind" validate:"omitempty,oneof='free plan' pro"`
}

func (s *signup) Normalize() {
	if s.Kind == "FREE" {
		s.Kind = "free plan"
	}
}

func TestValidate_Messages(t *testing.T) {
	_, errs := Validate(signup{Email: "x", Tags: []string{"a", "b", "c"}, Kind: "enterprise"})
	require.Len(t, errs, 3)

	assert.Equal(t, FieldError{Path: "email", Message: "email must be a valid email address"}, errs[0])
	assert.Equal(t, "tags must contain at most 2 items", errs[1].Message)
	assert.Equal(t, "kind must be one of: free plan, pro", errs[2].Message)
	assert.Equal(t, "email: email must be a valid email address; tags: tags must contain at most 2 items; kind: kind must be one of: free plan, pro", errs.Error())
}

func TestValidate_Normalizes(t *testing.T) {
	got, errs := Validate(signup{Email: "a@b.co", Kind: "FREE"})
	require.Empty(t, errs)
	assert.Equal(t, "free plan", got.Kind)
}

func TestValidate_ListQueryDateRange(t *testing.T) {
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, errs := Validate(models.ListQuery{StartDate: &start, EndDate: &end})
	require.Len(t, errs, 1)
	assert.Equal(t, "endDate", errs[0].Path)
	assert.Equal(t, "endDate must not be before startDate", errs[0].Message)
}

func TestErrors_Sources(t *testing.T) {
	errs := Errors{{Path: "name", Message: "name is required"}, {Message: "bad input"}}
	assert.Equal(t, []models.ErrorSource{
		{Source: "name", Message: "name is required"},
		{Source: "", Message: "bad input"},
	}, errs.Sources())
	assert.Equal(t, "name: name is required; bad input", errs.Error())
}

func TestVar(t *testing.T) {
	assert.Nil(t, Var("id", "64b7f0c2a1b2c3d4e5f60718", "objectid"))

	fe := Var("id", "nope", "objectid")
	require.NotNil(t, fe)
	assert.Equal(t, "id must be a valid 24-character hex id", fe.Message)

	fe = Var("phone", "12ab", "phone")
	require.NotNil(t, fe)
	assert.Equal(t, "phone must be a valid phone number", fe.Message)
}
