package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID            string        `json:"_id"`
	Organization  string        `json:"organization"`
	Plan          string        `json:"plan,omitempty"`
	User          string        `json:"user,omitempty"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency,omitempty"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	InvoiceID     string        `json:"invoiceId,omitempty"`
	Method        string        `json:"method,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
}

type DurationUnit string

const (
	DurationDay   DurationUnit = "day"
	DurationWeek  DurationUnit = "week"
	DurationMonth DurationUnit = "month"
	DurationYear  DurationUnit = "year"
)

type Plan struct {
	ID            string       `json:"_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Price         float64      `json:"price"`
	Currency      string       `json:"currency,omitempty"`
	DurationUnit  DurationUnit `json:"durationUnit"`
	DurationValue int          `json:"durationValue"`
	Features      []string     `json:"features,omitempty"`
	IsActive      bool         `json:"isActive"`
	CreatedAt     *time.Time   `json:"createdAt,omitempty"`
}

// WalletTransaction is returned by wallet top-ups and deductions.
type WalletTransaction struct {
	ID        string     `json:"_id"`
	User      string     `json:"user"`
	Amount    float64    `json:"amount"`
	Type      string     `json:"type"`
	Balance   float64    `json:"balance"`
	Note      string     `json:"note,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
