package models

import "time"

type OrganizationStatus string

const (
	OrganizationActive    OrganizationStatus = "active"
	OrganizationInactive  OrganizationStatus = "inactive"
	OrganizationSuspended OrganizationStatus = "suspended"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type BillingInfo struct {
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"taxId,omitempty"`
	CardLast4 string `json:"cardLast4,omitempty"`
}

type Organization struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	Billing   *BillingInfo       `json:"billingInfo,omitempty"`
	Plan      string             `json:"plan,omitempty"`
	Address   *Address           `json:"address,omitempty"`
	Status    OrganizationStatus `json:"status,omitempty"`
	CreatedAt *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleUser       Role = "user"
)

// FeatureAccess is one node of a user's permission tree. Actions apply to
// the node's feature; children narrow it (e.g. contacts → contacts.import).
type FeatureAccess struct {
	Feature  string          `json:"feature"`
	Actions  []string        `json:"actions,omitempty"`
	Children []FeatureAccess `json:"children,omitempty"`
}

type User struct {
	ID            string          `json:"_id"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName,omitempty"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Avatar        string          `json:"avatar,omitempty"`
	Role          Role            `json:"role"`
	Organization  string          `json:"organization,omitempty"`
	FeatureAccess []FeatureAccess `json:"featureAccess,omitempty"`
	WalletBalance float64         `json:"walletBalance"`
	Status        string          `json:"status,omitempty"`
	LastLoginAt   *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
