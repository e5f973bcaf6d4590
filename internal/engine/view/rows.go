package view

import (
	"adminconsole/internal/pkg/format"
	"adminconsole/internal/platform/models"
)

type TaskRow struct {
	models.Task
	StatusBadge Badge `json:"statusBadge"`
}

type PaymentRow struct {
	models.Payment
	StatusBadge Badge  `json:"statusBadge"`
	AmountText  string `json:"amountText"`
}

type OrganizationRow struct {
	models.Organization
	StatusBadge Badge  `json:"statusBadge"`
	PhoneText   string `json:"phoneText,omitempty"`
	CardText    string `json:"cardText,omitempty"`
}

type UserRow struct {
	models.User
	FullName    string `json:"fullName"`
	PhoneText   string `json:"phoneText,omitempty"`
	BalanceText string `json:"balanceText"`
}

func Task(t models.Task) TaskRow {
	return TaskRow{Task: t, StatusBadge: TaskStatusBadge(t.Status)}
}

func Payment(p models.Payment) PaymentRow {
	return PaymentRow{
		Payment:     p,
		StatusBadge: PaymentStatusBadge(p.Status),
		AmountText:  format.Amount(p.Amount, p.Currency),
	}
}

func Organization(o models.Organization) OrganizationRow {
	row := OrganizationRow{
		Organization: o,
		StatusBadge:  OrganizationStatusBadge(o.Status),
		PhoneText:    format.Phone(o.Phone),
	}
	if o.Billing != nil && o.Billing.CardLast4 != "" {
		row.CardText = format.MaskCard("000000000000" + o.Billing.CardLast4)
	}
	return row
}

// User renders a user row. Balances are shown in currency.
func User(u models.User, currency string) UserRow {
	return UserRow{
		User:        u,
		FullName:    u.FullName(),
		PhoneText:   format.Phone(u.Phone),
		BalanceText: format.Amount(u.WalletBalance, currency),
	}
}

// Rows maps a page of DTOs to a page of rows, keeping the meta block.
func Rows[T, R any](page models.Page[T], fn func(T) R) models.Page[R] {
	out := models.Page[R]{Data: make([]R, len(page.Data)), Meta: page.Meta}
	for i, item := range page.Data {
		out.Data[i] = fn(item)
	}
	return out
}
