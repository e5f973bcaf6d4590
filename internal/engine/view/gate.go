package view

import (
	"slices"
	"strings"

	"adminconsole/internal/platform/models"
)

// Gate answers can(feature, action) for one user. Features are dot paths
// through the feature-access tree ("contacts.import"). A node without its
// own actions inherits its parent's.
type Gate struct {
	role  models.Role
	roots []models.FeatureAccess
}

func NewGate(u *models.User) Gate {
	if u == nil {
		return Gate{}
	}
	return Gate{role: u.Role, roots: u.FeatureAccess}
}

func (g Gate) Can(feature, action string) bool {
	if g.role == models.RoleSuperAdmin {
		return true
	}
	if feature == "" || action == "" {
		return false
	}

	nodes := g.roots
	var inherited []string
	var node *models.FeatureAccess
	for _, part := range strings.Split(strings.ToLower(feature), ".") {
		node = find(nodes, part)
		if node == nil {
			return false
		}
		if len(node.Actions) > 0 {
			inherited = node.Actions
		}
		nodes = node.Children
	}
	return slices.Contains(inherited, action)
}

// Visible reports whether the feature may be shown at all.
func (g Gate) Visible(feature string) bool {
	return g.Can(feature, "view")
}

func find(nodes []models.FeatureAccess, feature string) *models.FeatureAccess {
	for i := range nodes {
		if strings.EqualFold(nodes[i].Feature, feature) {
			return &nodes[i]
		}
	}
	return nil
}
