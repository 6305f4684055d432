// Package tms defines the external transportation-management-system boundary:
// the versioned snapshot DTO and the authenticated pull client. Snapshots are
// parsed strictly at this edge; loosely-typed payloads never reach the
// reconciliation logic.
package tms

import (
	"encoding/json"
	"math"
)

// Snapshot is the external system's view of one order, as delivered by a
// webhook payload or a pull. Date fields stay as raw strings here; parsing
// and validity filtering happen in the reconciler.
type Snapshot struct {
	ExternalID    string    `json:"id" validate:"required"`
	Status        string    `json:"status"`
	TransportType string    `json:"transport_type"`
	CreatedAt     string    `json:"created_at"`
	ChangedAt     string    `json:"changed_at"`
	Pickup        Leg       `json:"pickup"`
	Delivery      Leg       `json:"delivery"`
	Vehicles      []Vehicle `json:"vehicles"`
	Customer      *Customer `json:"customer"`
}

// Leg is the external scheduling block for one end of the transport.
type Leg struct {
	ScheduledAt     string `json:"scheduled_at"`
	ScheduledEndsAt string `json:"scheduled_ends_at"`
	AdjustedDate    string `json:"adjusted_date"`
	CompletedAt     string `json:"completed_at"`
	Venue           *Venue `json:"venue"`
}

// Venue is the external address/contact block. Pointer fields distinguish
// "removed by the external system" (null) from an empty value.
type Venue struct {
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Zip         *string  `json:"zip"`
	ContactName *string  `json:"contact_name"`
	Phone       *string  `json:"phone"`
	MobilePhone *string  `json:"mobile_phone"`
	Notes       *string  `json:"notes"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Vehicle is one external vehicle record. Tariff arrives as an arbitrary
// JSON number (dollars); a non-numeric value is treated as absent.
type Vehicle struct {
	Make         string      `json:"make"`
	Model        string      `json:"model"`
	Year         *int        `json:"year"`
	VIN          string      `json:"vin"`
	IsInoperable bool        `json:"is_inoperable"`
	Tariff       json.Number `json:"tariff"`
}

// TariffCents converts the external dollar tariff to integer cents.
// Returns false when the tariff is missing or not numeric.
func (v Vehicle) TariffCents() (int64, bool) {
	if v.Tariff == "" {
		return 0, false
	}
	f, err := v.Tariff.Float64()
	if err != nil {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

// Customer is the external system's record of the ordering business.
type Customer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
}
