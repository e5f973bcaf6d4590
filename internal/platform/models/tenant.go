package models

import "time"

// Tenant-scoped records managed from the console.

type Contact struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Company      string     `json:"company,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type Log struct {
	ID           string         `json:"_id"`
	Organization string         `json:"organization,omitempty"`
	User         string         `json:"user,omitempty"`
	Action       string         `json:"action"`
	Resource     string         `json:"resource,omitempty"`
	Level        string         `json:"level,omitempty"`
	Message      string         `json:"message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
}

type EmailLog struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization,omitempty"`
	To           string     `json:"to"`
	Subject      string     `json:"subject"`
	Template     string     `json:"template,omitempty"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type Category struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Type         string     `json:"type,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type Template struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization,omitempty"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Subject      string     `json:"subject,omitempty"`
	Body         string     `json:"body"`
	Category     string     `json:"category,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type TicketReply struct {
	Author    string     `json:"author"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type SupportTicket struct {
	ID           string        `json:"_id"`
	Organization string        `json:"organization"`
	Subject      string        `json:"subject"`
	Description  string        `json:"description"`
	Status       string        `json:"status"`
	Priority     string        `json:"priority,omitempty"`
	AssignedTo   string        `json:"assignedTo,omitempty"`
	Replies      []TicketReply `json:"replies,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
}

type Asset struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	Value        float64    `json:"value,omitempty"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type TaskStatus string

const (
	TaskToDo      TaskStatus = "To Do"
	TaskOngoing   TaskStatus = "Ongoing"
	TaskCompleted TaskStatus = "Completed"
	TaskOverdue   TaskStatus = "Overdue"
)

type Task struct {
	ID           string     `json:"_id"`
	Organization string     `json:"organization"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Status       TaskStatus `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}
