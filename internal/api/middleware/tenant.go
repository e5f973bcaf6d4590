package middleware

import (
	"context"
	"net/http"

	apiContext "adminconsole/internal/api/context"
	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/models"
)

// TenantScope is the organization a request is confined to. Organization is
// empty only for super admins looking across every tenant.
type TenantScope struct {
	Organization string
	SuperAdmin   bool
}

type TenantMiddleware struct{}

func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{}
}

// Handle pins non super admins to their own organization. Super admins may
// narrow to one with ?organization=.
func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r)
		if sess == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No session found", nil)
			return
		}

		scope := &TenantScope{SuperAdmin: sess.Role == models.RoleSuperAdmin}
		if scope.SuperAdmin {
			if org := r.URL.Query().Get("organization"); org != "" {
				if fe := validator.Var("organization", org, "objectid"); fe != nil {
					errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, fe.Message, validator.Errors{*fe}.Sources())
					return
				}
				scope.Organization = org
			}
		} else {
			if sess.Organization == "" {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Account is not attached to an organization", nil)
				return
			}
			scope.Organization = sess.Organization
		}

		ctx := context.WithValue(r.Context(), apiContext.Scope, scope)
		next(w, r.WithContext(ctx))
	}
}

func ScopeFrom(r *http.Request) *TenantScope {
	scope, _ := r.Context().Value(apiContext.Scope).(*TenantScope)
	if scope == nil {
		return &TenantScope{}
	}
	return scope
}
