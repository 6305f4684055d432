package reconcile

import (
	"time"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
)

// MergeConfig carries the business constants the merge depends on.
type MergeConfig struct {
	WithheldSentinel        string
	WhiteGloveTransportType string
}

// MergeOutcome reports what the merge observed beyond the order itself.
type MergeOutcome struct {
	// ScheduleChanged is set when either estimated window moved relative to
	// the pre-merge order. Drives the carrier-notification side effect.
	ScheduleChanged bool
	Warnings        []string
}

// Merge applies an external snapshot to an order. Pure function of
// (order, snapshot, now): applying the same snapshot to its own result
// changes nothing, which is what makes duplicate pushes safe.
func Merge(order domain.Order, snapshot *tms.Snapshot, now time.Time, cfg MergeConfig) (domain.Order, MergeOutcome) {
	merged := order
	var outcome MergeOutcome

	// externalId is write-once
	if merged.TMS.ExternalID == "" {
		merged.TMS.ExternalID = snapshot.ExternalID
	}
	merged.TMS.ExternalStatus = snapshot.Status
	if created := parseValidTime(snapshot.CreatedAt, now); created != nil {
		merged.TMS.CreatedAt = created
	}
	if changed := parseValidTime(snapshot.ChangedAt, now); changed != nil {
		merged.TMS.UpdatedAt = changed
	}

	merged.Status = domain.NormalizeStatus(snapshot.Status)

	pickup := DerivePickupTimes(snapshot.Pickup, snapshot.Status, now)
	delivery := DeriveDeliveryTimes(snapshot.Delivery, snapshot.Status, now)

	merged.Schedule.PickupEstimated = pickup.Estimated
	merged.Schedule.DeliveryEstimated = delivery.Estimated
	if pickup.Actual != nil {
		merged.Schedule.PickupCompleted = pickup.Actual
	}
	if delivery.Actual != nil {
		// A capture-time fallback must not move an already persisted
		// completion stamp on every re-run.
		if !delivery.ActualIsCaptureTime || order.Schedule.DeliveryCompleted == nil {
			merged.Schedule.DeliveryCompleted = delivery.Actual
		}
	}

	merged.Origin = MergeStop(order.Origin, snapshot.Pickup.Venue, order.Flags.IsPartialOrder, cfg.WithheldSentinel)
	merged.Destination = MergeStop(order.Destination, snapshot.Delivery.Venue, order.Flags.IsPartialOrder, cfg.WithheldSentinel)

	vehicles, matchWarnings := ReconcileVehicles(order.Vehicles, snapshot.Vehicles, order.Modifiers)
	merged.Vehicles = vehicles
	merged.TotalPricing = domain.RecomputeTotals(vehicles)
	for _, w := range matchWarnings {
		outcome.Warnings = append(outcome.Warnings, w.String())
	}

	// White-glove orders keep their transport type no matter what the
	// external side reports.
	if order.TransportType != cfg.WhiteGloveTransportType && snapshot.TransportType != "" {
		merged.TransportType = snapshot.TransportType
	}

	merged.Schedule.PickupDateType = pickupDateType(merged.Status)
	merged.Schedule.DeliveryDateType = deliveryDateType(merged.Status)

	outcome.ScheduleChanged = !windowEqual(order.Schedule.PickupEstimated, merged.Schedule.PickupEstimated) ||
		!windowEqual(order.Schedule.DeliveryEstimated, merged.Schedule.DeliveryEstimated)

	return merged, outcome
}

func pickupDateType(status domain.Status) domain.DateType {
	switch status {
	case domain.StatusPickedUp, domain.StatusDelivered, domain.StatusInvoiced:
		return domain.DateTypeExact
	}
	return domain.DateTypeEstimated
}

func deliveryDateType(status domain.Status) domain.DateType {
	switch status {
	case domain.StatusDelivered, domain.StatusInvoiced:
		return domain.DateTypeExact
	}
	return domain.DateTypeEstimated
}

func windowEqual(a, b *domain.TimeWindow) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !a.Start.Equal(b.Start) {
		return false
	}
	if a.End == nil || b.End == nil {
		return a.End == b.End
	}
	return a.End.Equal(*b.End)
}
