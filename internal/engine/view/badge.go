// Package view holds the console's render models: status badges, decorated
// list rows and the feature-access gate.
package view

import "adminconsole/internal/platform/models"

type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// NotSet is rendered for an absent or unknown status.
var NotSet = Badge{Label: "Not Set", Color: "gray"}

var taskBadges = map[models.TaskStatus]Badge{
	models.TaskToDo:      {Label: "To Do", Color: "blue"},
	models.TaskOngoing:   {Label: "Ongoing", Color: "orange"},
	models.TaskCompleted: {Label: "Completed", Color: "green"},
	models.TaskOverdue:   {Label: "Overdue", Color: "red"},
}

var paymentBadges = map[models.PaymentStatus]Badge{
	models.PaymentPending:  {Label: "Pending", Color: "gold"},
	models.PaymentSuccess:  {Label: "Paid", Color: "green"},
	models.PaymentFailed:   {Label: "Failed", Color: "red"},
	models.PaymentRefunded: {Label: "Refunded", Color: "purple"},
}

var organizationBadges = map[models.OrganizationStatus]Badge{
	models.OrganizationActive:    {Label: "Active", Color: "green"},
	models.OrganizationInactive:  {Label: "Inactive", Color: "gray"},
	models.OrganizationSuspended: {Label: "Suspended", Color: "red"},
}

func lookup[K comparable](table map[K]Badge, status K) Badge {
	if b, ok := table[status]; ok {
		return b
	}
	return NotSet
}

func TaskStatusBadge(status models.TaskStatus) Badge {
	return lookup(taskBadges, status)
}

func PaymentStatusBadge(status models.PaymentStatus) Badge {
	return lookup(paymentBadges, status)
}

func OrganizationStatusBadge(status models.OrganizationStatus) Badge {
	return lookup(organizationBadges, status)
}
