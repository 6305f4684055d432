// Package portals provides the portal lookup used by reconciliation and
// notification dispatch. A portal is the business that submitted the order.
package portals

import "time"

// ContactProfile is what the portal is configured with internally. The
// contact-consistency audit compares this against the external system's
// customer block.
type ContactProfile struct {
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// NotificationEntry is one configured notification recipient. Domestic is a
// three-state filter used only for the SIRVA portal: nil means the entry
// receives notifications for both domestic and non-domestic orders.
type NotificationEntry struct {
	Email          string `json:"email"`
	EnablePickup   bool   `json:"enablePickup"`
	EnableDelivery bool   `json:"enableDelivery"`
	Domestic       *bool  `json:"domestic,omitempty"`
}

// Portal is the owning business for a set of orders.
type Portal struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	ContactProfile     ContactProfile      `json:"contactProfile"`
	NotificationEmails []NotificationEntry `json:"notificationEmails"`
	LegacyAgentEmail   string              `json:"legacyAgentEmail,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}
