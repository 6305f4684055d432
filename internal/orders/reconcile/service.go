package reconcile

import (
	"context"
	"fmt"
	"time"

	"transport_broker_backend/internal/events"
	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

// OrderRepository is the persistence surface the service needs.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

// PortalReader resolves the owning portal for an order.
type PortalReader interface {
	GetByID(ctx context.Context, id string) (*portals.Portal, error)
}

// SnapshotPuller fetches the external view of an order on demand.
type SnapshotPuller interface {
	GetOrder(ctx context.Context, externalID string) (*tms.Snapshot, error)
}

// Service orchestrates one reconciliation pass per order. Failures are
// contained by the caller; the service itself never writes a half-merged
// order.
type Service struct {
	orders  OrderRepository
	portals PortalReader
	puller  SnapshotPuller
	bus     events.Bus
	log     *logger.Logger
	cfg     MergeConfig

	now func() time.Time
}

// NewService creates the reconciliation service.
func NewService(orders OrderRepository, portalReader PortalReader, puller SnapshotPuller, bus events.Bus, cfg config.ReconcileConfig, log *logger.Logger) *Service {
	return &Service{
		orders:  orders,
		portals: portalReader,
		puller:  puller,
		bus:     bus,
		log:     log,
		cfg: MergeConfig{
			WithheldSentinel:        cfg.GetWithheldSentinel(),
			WhiteGloveTransportType: cfg.GetWhiteGloveTransportType(),
		},
		now: time.Now,
	}
}

// Reconcile pulls the external snapshot for one order and applies it. An
// order with no external id is a no-op, not an error. A failed pull skips
// this cycle; the next scheduled cycle retries.
func (s *Service) Reconcile(ctx context.Context, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	if order.TMS.ExternalID == "" {
		s.log.Debug("order has no external id, nothing to reconcile", "order_id", orderID)
		return nil
	}

	snapshot, err := s.puller.GetOrder(ctx, order.TMS.ExternalID)
	if err != nil {
		return fmt.Errorf("pull external order %s: %w", order.TMS.ExternalID, err)
	}

	return s.ApplySnapshot(ctx, order, snapshot)
}

// ApplyWebhook resolves the local order for an inbound snapshot and applies
// it. Used by the webhook intake where the payload already carries the
// external view.
func (s *Service) ApplyWebhook(ctx context.Context, snapshot *tms.Snapshot) error {
	order, err := s.orders.GetByExternalID(ctx, snapshot.ExternalID)
	if err != nil {
		return fmt.Errorf("resolve order for external id %s: %w", snapshot.ExternalID, err)
	}
	return s.ApplySnapshot(ctx, order, snapshot)
}

// ApplySnapshot merges one snapshot into one order and persists the result
// as a single atomic write. The portal lookup fails closed: no portal, no
// write. A snapshot whose changed_at matches the already persisted external
// updated_at is a duplicate and a safe no-op, which keeps overlapping
// webhook/pull/manual triggers from racing on the document.
func (s *Service) ApplySnapshot(ctx context.Context, order *domain.Order, snapshot *tms.Snapshot) error {
	now := s.now()

	if changed := parseValidTime(snapshot.ChangedAt, now); changed != nil &&
		order.TMS.UpdatedAt != nil && changed.Equal(*order.TMS.UpdatedAt) {
		s.log.Debug("duplicate snapshot, skipping",
			"order_id", order.ID, "changed_at", snapshot.ChangedAt)
		return nil
	}

	portal, err := s.portals.GetByID(ctx, order.PortalID)
	if err != nil {
		return fmt.Errorf("resolve portal %s for order %s: %w", order.PortalID, order.ID, err)
	}

	if mismatches := AuditContact(snapshot.Customer, portal.ContactProfile); len(mismatches) > 0 {
		fields := make([]string, len(mismatches))
		for i, m := range mismatches {
			fields[i] = m.Field
		}
		s.log.ContactDrift(order.ID, portal.ID, fields)
	}

	merged, outcome := Merge(*order, snapshot, now, s.cfg)
	for _, warning := range outcome.Warnings {
		s.log.Warn("vehicle match warning", "order_id", order.ID, "warning", warning)
	}

	if err := s.orders.Update(ctx, &merged); err != nil {
		return fmt.Errorf("persist order %s: %w", order.ID, err)
	}
	*order = merged

	s.bus.Publish(ctx, events.NewOrderReconciled(merged.ID, merged.TMS.ExternalID, string(merged.Status), outcome.Warnings))
	if outcome.ScheduleChanged {
		s.bus.Publish(ctx, events.NewOrderScheduleChanged(merged.ID,
			windowStart(merged.Schedule.PickupEstimated),
			windowStart(merged.Schedule.DeliveryEstimated)))
	}

	return nil
}

func windowStart(w *domain.TimeWindow) *time.Time {
	if w == nil {
		return nil
	}
	start := w.Start
	return &start
}
