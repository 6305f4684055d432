// Package domain holds the order aggregate and its value types.
package domain

import (
	"strings"
	"time"
)

// Visibility marks whether an address may be replaced by external data.
type Visibility string

const (
	VisibilityVisible  Visibility = "visible"
	VisibilityWithheld Visibility = "withheld"
)

// DateType classifies a schedule instant as an estimate or a confirmed date.
type DateType string

const (
	DateTypeEstimated DateType = "estimated"
	DateTypeExact     DateType = "exact"
)

// ChannelStatus is the send state of a notification channel.
type ChannelStatus string

const (
	ChannelUnsent ChannelStatus = "Unsent"
	ChannelSent   ChannelStatus = "Sent"
	ChannelFailed ChannelStatus = "Failed"
)

// TMSSnapshot mirrors the last-known external view of the order.
// ExternalID is write-once: once set it is never overwritten.
type TMSSnapshot struct {
	ExternalID     string     `json:"externalId"`
	ExternalStatus string     `json:"externalStatus"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// TimeWindow is an estimated scheduling window. End may be absent.
type TimeWindow struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Schedule carries the pickup and delivery instants for an order.
type Schedule struct {
	PickupSelected    *time.Time  `json:"pickupSelected,omitempty"`
	PickupEstimated   *TimeWindow `json:"pickupEstimated,omitempty"`
	DeliveryEstimated *TimeWindow `json:"deliveryEstimated,omitempty"`
	PickupCompleted   *time.Time  `json:"pickupCompleted,omitempty"`
	DeliveryCompleted *time.Time  `json:"deliveryCompleted,omitempty"`
	PickupDateType    DateType    `json:"pickupDateType,omitempty"`
	DeliveryDateType  DateType    `json:"deliveryDateType,omitempty"`
}

// Contact is the person reachable at a stop.
type Contact struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobilePhone"`
}

// Address is a stop's postal address plus its visibility marker.
type Address struct {
	Line1      string     `json:"line1"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Zip        string     `json:"zip"`
	Visibility Visibility `json:"visibility,omitempty"`
}

// IsWithheld reports whether the address is deliberately concealed from the
// carrier. The explicit visibility tag is authoritative; the sentinel
// substring in line1 is the legacy convention and is still honored.
func (a Address) IsWithheld(sentinel string) bool {
	if a.Visibility == VisibilityWithheld {
		return true
	}
	return sentinel != "" && strings.Contains(strings.ToLower(a.Line1), strings.ToLower(sentinel))
}

// Stop is one end of the transport (origin or destination).
type Stop struct {
	Contact   Contact  `json:"contact"`
	Address   Address  `json:"address"`
	Notes     string   `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// PriceModifiers are brokerage-side amounts layered on the carrier tariff.
// All money values are integer cents.
type PriceModifiers struct {
	CompanyTariffCents int64 `json:"companyTariffCents"`
	CommissionCents    int64 `json:"commissionCents"`
}

// VehiclePricing is the per-vehicle price breakdown in cents.
type VehiclePricing struct {
	BaseCents                                int64          `json:"baseCents"`
	Modifiers                                PriceModifiers `json:"modifiers"`
	TotalCents                               int64          `json:"totalCents"`
	TotalWithCompanyTariffAndCommissionCents int64          `json:"totalWithCompanyTariffAndCommissionCents"`
}

// Vehicle is one transported unit on the order.
type Vehicle struct {
	Make         string         `json:"make"`
	Model        string         `json:"model"`
	Year         *int           `json:"year,omitempty"`
	VIN          string         `json:"vin,omitempty"`
	IsInoperable bool           `json:"isInoperable"`
	Pricing      VehiclePricing `json:"pricing"`
}

// OrderPricing is the order-level mirror of the vehicle pricing sums.
type OrderPricing struct {
	TotalCents                               int64 `json:"totalCents"`
	TotalWithCompanyTariffAndCommissionCents int64 `json:"totalWithCompanyTariffAndCommissionCents"`
}

// Flags are persisted order-level markers.
type Flags struct {
	IsPartialOrder bool `json:"isPartialOrder"`
	HasClaim       bool `json:"hasClaim"`
}

// Channel is the send record for one notification channel.
type Channel struct {
	Status   ChannelStatus `json:"status"`
	SentAt   *time.Time    `json:"sentAt,omitempty"`
	FailedAt *time.Time    `json:"failedAt,omitempty"`
}

// Notifications holds the per-channel records and the awaiting-confirmation
// flags. The awaiting flags only ever transition true to false.
type Notifications struct {
	Survey                       Channel `json:"survey"`
	SurveyReminder               Channel `json:"surveyReminder"`
	AwaitingPickupConfirmation   bool    `json:"awaitingPickupConfirmation"`
	AwaitingDeliveryConfirmation bool    `json:"awaitingDeliveryConfirmation"`
}

// Agent is a per-order notification subscriber.
type Agent struct {
	Name                        string `json:"name"`
	Email                       string `json:"email"`
	EnablePickupNotifications   bool   `json:"enablePickupNotifications"`
	EnableDeliveryNotifications bool   `json:"enableDeliveryNotifications"`
}

// Customer is the external system's view of the ordering party, mirrored on
// the order for auditing and survey delivery.
type Customer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
}

// Order is the aggregate root. It is mutated only by reconciliation after
// creation, until it reaches a terminal status. Records are archived, never
// deleted.
type Order struct {
	ID            string `json:"id"`
	RefID         int64  `json:"refId"`
	Status        Status `json:"status"`
	PortalID      string `json:"portalId"`
	TransportType string `json:"transportType"`

	TMS      TMSSnapshot `json:"tmsSnapshot"`
	Schedule Schedule    `json:"schedule"`

	Origin      Stop `json:"origin"`
	Destination Stop `json:"destination"`

	Vehicles     []Vehicle      `json:"vehicles"`
	TotalPricing OrderPricing   `json:"totalPricing"`
	Modifiers    PriceModifiers `json:"modifiers"`

	Flags         Flags         `json:"flags"`
	Notifications Notifications `json:"notifications"`

	Agents           []Agent `json:"agents,omitempty"`
	LegacyAgentEmail string  `json:"legacyAgentEmail,omitempty"`

	Customer   Customer `json:"customer"`
	IsDomestic bool     `json:"isDomestic"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsTerminal reports whether the order has reached a terminal status.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusDelivered, StatusInvoiced, StatusCanceled, StatusArchived:
		return true
	}
	return false
}

// RecomputeTotals sums the per-vehicle totals into the order-level mirror.
func RecomputeTotals(vehicles []Vehicle) OrderPricing {
	var totals OrderPricing
	for _, v := range vehicles {
		totals.TotalCents += v.Pricing.TotalCents
		totals.TotalWithCompanyTariffAndCommissionCents += v.Pricing.TotalWithCompanyTariffAndCommissionCents
	}
	return totals
}
