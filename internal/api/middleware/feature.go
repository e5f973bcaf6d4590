package middleware

import (
	"context"
	"net/http"

	"adminconsole/internal/engine/view"
	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/platform/models"
)

// FeatureGate checks the signed-in user's feature access before a handler
// runs. The profile comes from me, usually a cached read.
type FeatureGate struct {
	me func(ctx context.Context) (models.User, error)
}

func NewFeatureGate(me func(ctx context.Context) (models.User, error)) *FeatureGate {
	return &FeatureGate{me: me}
}

func (g *FeatureGate) Require(feature, action string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := g.me(r.Context())
			if err != nil {
				WriteFailure(w, err)
				return
			}
			if !view.NewGate(&user).Can(feature, action) {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "You do not have access to "+feature, nil)
				return
			}
			next(w, r)
		}
	}
}
