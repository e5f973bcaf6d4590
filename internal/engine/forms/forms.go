// Package forms holds the client-side schemas the console validates before
// a write leaves the process. Each form doubles as the request body.
package forms

import (
	"strings"
	"time"

	"adminconsole/internal/pkg/format"
	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/models"
)

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func normEmail(s *string) {
	*s = strings.ToLower(strings.TrimSpace(*s))
}

// normPhone keeps digits and a leading plus sign.
func normPhone(s *string) {
	v := strings.TrimSpace(*s)
	if v == "" {
		*s = ""
		return
	}
	plus := strings.HasPrefix(v, "+")
	v = format.Digits(v)
	if plus {
		v = "+" + v
	}
	*s = v
}

func normList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

func (f *LoginForm) Normalize() {
	normEmail(&f.Email)
}

// IntegrationTokenForm replaces the session's integration token. An empty
// token clears it.
type IntegrationTokenForm struct {
	Token string `json:"token" validate:"max=4096"`
}

func (f *IntegrationTokenForm) Normalize() {
	trim(&f.Token)
}

type AddressForm struct {
	Street  string `json:"street,omitempty" validate:"max=200"`
	City    string `json:"city,omitempty" validate:"max=100"`
	State   string `json:"state,omitempty" validate:"max=100"`
	Country string `json:"country,omitempty" validate:"max=100"`
	ZipCode string `json:"zipCode,omitempty" validate:"max=12"`
}

func (f *AddressForm) Normalize() {
	trim(&f.Street, &f.City, &f.State, &f.Country, &f.ZipCode)
}

type BillingForm struct {
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,phone"`
	TaxID      string `json:"taxId,omitempty" validate:"max=30"`
	CardNumber string `json:"cardNumber,omitempty" validate:"omitempty,credit_card"`
}

func (f *BillingForm) Normalize() {
	normEmail(&f.Email)
	normPhone(&f.Phone)
	trim(&f.TaxID)
	f.CardNumber = format.Digits(f.CardNumber)
}

type OrganizationForm struct {
	Name    string                    `json:"name" validate:"required,min=2,max=100"`
	Email   string                    `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string                    `json:"phone,omitempty" validate:"omitempty,phone"`
	Plan    string                    `json:"plan,omitempty" validate:"omitempty,objectid"`
	Status  models.OrganizationStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	Address *AddressForm              `json:"address,omitempty"`
	Billing *BillingForm              `json:"billingInfo,omitempty"`
}

func (f *OrganizationForm) Normalize() {
	trim(&f.Name, &f.Plan)
	normEmail(&f.Email)
	normPhone(&f.Phone)
	if f.Address != nil {
		f.Address.Normalize()
	}
	if f.Billing != nil {
		f.Billing.Normalize()
	}
}

type PlanChangeForm struct {
	Plan string `json:"plan" validate:"required,objectid"`
}

func (f *PlanChangeForm) Normalize() {
	trim(&f.Plan)
}

type FeatureAccessForm struct {
	Feature  string              `json:"feature" validate:"required,min=2,max=50"`
	Actions  []string            `json:"actions,omitempty" validate:"omitempty,unique,dive,oneof=view create edit delete export import"`
	Children []FeatureAccessForm `json:"children,omitempty" validate:"omitempty,dive"`
}

func (f *FeatureAccessForm) Normalize() {
	f.Feature = strings.ToLower(strings.TrimSpace(f.Feature))
	f.Actions = normList(f.Actions)
	for i := range f.Children {
		f.Children[i].Normalize()
	}
}

// Model converts the validated tree to the DTO the backend stores.
func (f FeatureAccessForm) Model() models.FeatureAccess {
	fa := models.FeatureAccess{Feature: f.Feature, Actions: f.Actions}
	for _, c := range f.Children {
		fa.Children = append(fa.Children, c.Model())
	}
	return fa
}

type FeatureAccessUpdate struct {
	FeatureAccess []FeatureAccessForm `json:"featureAccess" validate:"omitempty,dive"`
}

func (f *FeatureAccessUpdate) Normalize() {
	for i := range f.FeatureAccess {
		f.FeatureAccess[i].Normalize()
	}
}

type CreateUserForm struct {
	FirstName     string              `json:"firstName" validate:"required,min=2,max=50"`
	LastName      string              `json:"lastName,omitempty" validate:"max=50"`
	Email         string              `json:"email" validate:"required,email,max=100"`
	Phone         string              `json:"phone,omitempty" validate:"omitempty,phone"`
	Password      string              `json:"password" validate:"required,min=8,max=64"`
	Role          models.Role         `json:"role" validate:"required,oneof=super_admin admin manager user"`
	Organization  string              `json:"organization,omitempty" validate:"omitempty,objectid"`
	FeatureAccess []FeatureAccessForm `json:"featureAccess,omitempty" validate:"omitempty,dive"`
}

func (f *CreateUserForm) Normalize() {
	trim(&f.FirstName, &f.LastName, &f.Organization)
	normEmail(&f.Email)
	normPhone(&f.Phone)
	for i := range f.FeatureAccess {
		f.FeatureAccess[i].Normalize()
	}
}

type UpdateUserForm struct {
	FirstName string      `json:"firstName,omitempty" validate:"omitempty,min=2,max=50"`
	LastName  string      `json:"lastName,omitempty" validate:"max=50"`
	Phone     string      `json:"phone,omitempty" validate:"omitempty,phone"`
	Avatar    string      `json:"avatar,omitempty" validate:"omitempty,url"`
	Role      models.Role `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin manager user"`
	Status    string      `json:"status,omitempty" validate:"omitempty,oneof=active inactive blocked"`
}

func (f *UpdateUserForm) Normalize() {
	trim(&f.FirstName, &f.LastName, &f.Avatar)
	normPhone(&f.Phone)
}

type WalletForm struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Type   string  `json:"type" validate:"required,oneof=credit debit"`
	Note   string  `json:"note,omitempty" validate:"max=200"`
}

func (f *WalletForm) Normalize() {
	trim(&f.Note)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
}

type PlanForm struct {
	Name          string              `json:"name" validate:"required,min=2,max=50"`
	Description   string              `json:"description,omitempty" validate:"max=500"`
	Price         float64             `json:"price" validate:"gte=0"`
	Currency      string              `json:"currency,omitempty" validate:"omitempty,iso4217"`
	DurationUnit  models.DurationUnit `json:"durationUnit" validate:"required,oneof=day week month year"`
	DurationValue int                 `json:"durationValue" validate:"required,min=1,max=365"`
	Features      []string            `json:"features,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	IsActive      bool                `json:"isActive"`
}

func (f *PlanForm) Normalize() {
	trim(&f.Name, &f.Description)
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
	f.Features = normList(f.Features)
}

type PaymentForm struct {
	Organization string  `json:"organization" validate:"required,objectid"`
	Plan         string  `json:"plan" validate:"required,objectid"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Currency     string  `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Method       string  `json:"method,omitempty" validate:"omitempty,oneof=card bank_transfer wallet cash"`
}

func (f *PaymentForm) Normalize() {
	trim(&f.Organization, &f.Plan, &f.Method)
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
}

type RefundForm struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

func (f *RefundForm) Normalize() {
	trim(&f.Reason)
}

type ContactForm struct {
	Organization string   `json:"organization,omitempty" validate:"omitempty,objectid"`
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Company      string   `json:"company,omitempty" validate:"max=100"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=30"`
	Notes        string   `json:"notes,omitempty" validate:"max=1000"`
}

func (f *ContactForm) Normalize() {
	trim(&f.Organization, &f.Name, &f.Company, &f.Notes)
	normEmail(&f.Email)
	normPhone(&f.Phone)
	f.Tags = normList(f.Tags)
}

type CategoryForm struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Description string `json:"description,omitempty" validate:"max=300"`
	Type        string `json:"type,omitempty" validate:"omitempty,oneof=contact template asset ticket"`
}

func (f *CategoryForm) Normalize() {
	trim(&f.Name, &f.Description, &f.Type)
}

type TemplateForm struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Type     string `json:"type" validate:"required,oneof=email sms"`
	Subject  string `json:"subject,omitempty" validate:"required_if=Type email,max=200"`
	Body     string `json:"body" validate:"required,max=20000"`
	Category string `json:"category,omitempty" validate:"omitempty,objectid"`
}

func (f *TemplateForm) Normalize() {
	trim(&f.Name, &f.Type, &f.Subject, &f.Category)
}

type TicketForm struct {
	Organization string `json:"organization" validate:"required,objectid"`
	Subject      string `json:"subject" validate:"required,min=5,max=150"`
	Description  string `json:"description" validate:"required,min=10,max=5000"`
	Priority     string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=open in_progress resolved closed"`
	AssignedTo   string `json:"assignedTo,omitempty" validate:"omitempty,objectid"`
}

func (f *TicketForm) Normalize() {
	trim(&f.Organization, &f.Subject, &f.Description, &f.Priority, &f.Status, &f.AssignedTo)
}

type TicketReplyForm struct {
	Message string `json:"message" validate:"required,max=5000"`
}

func (f *TicketReplyForm) Normalize() {
	trim(&f.Message)
}

type AssetForm struct {
	Organization string  `json:"organization" validate:"required,objectid"`
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Type         string  `json:"type" validate:"required,max=50"`
	SerialNumber string  `json:"serialNumber,omitempty" validate:"max=100"`
	AssignedTo   string  `json:"assignedTo,omitempty" validate:"omitempty,objectid"`
	Value        float64 `json:"value,omitempty" validate:"gte=0"`
	Status       string  `json:"status,omitempty" validate:"omitempty,oneof=available assigned maintenance retired"`
}

func (f *AssetForm) Normalize() {
	trim(&f.Organization, &f.Name, &f.Type, &f.SerialNumber, &f.AssignedTo, &f.Status)
}

type TaskForm struct {
	Organization string            `json:"organization" validate:"required,objectid"`
	Title        string            `json:"title" validate:"required,min=3,max=150"`
	Description  string            `json:"description,omitempty" validate:"max=2000"`
	AssignedTo   string            `json:"assignedTo,omitempty" validate:"omitempty,objectid"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Status       models.TaskStatus `json:"status,omitempty" validate:"omitempty,oneof='To Do' Ongoing Completed Overdue"`
}

func (f *TaskForm) Normalize() {
	trim(&f.Organization, &f.Title, &f.Description, &f.AssignedTo)
}

// Query validates list filters before they are encoded into a URL.
func Query(q models.ListQuery) (models.ListQuery, validator.Errors) {
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	q.SortOrder = models.SortOrder(strings.ToLower(string(q.SortOrder)))
	return validator.Validate(q)
}
