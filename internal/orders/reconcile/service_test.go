package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	ievents "transport_broker_backend/internal/events"
	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/platform/config"
	pevents "transport_broker_backend/platform/events"
	"transport_broker_backend/platform/logger"
)

type fakeOrders struct {
	stored  map[string]*domain.Order
	updates int
}

func newFakeOrders(orders ...*domain.Order) *fakeOrders {
	f := &fakeOrders{stored: make(map[string]*domain.Order)}
	for _, o := range orders {
		f.stored[o.ID] = cloneOrder(o)
	}
	return f
}

func cloneOrder(o *domain.Order) *domain.Order {
	raw, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	var clone domain.Order
	if err := json.Unmarshal(raw, &clone); err != nil {
		panic(err)
	}
	return &clone
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.stored[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return cloneOrder(o), nil
}

func (f *fakeOrders) GetByExternalID(_ context.Context, externalID string) (*domain.Order, error) {
	for _, o := range f.stored {
		if o.TMS.ExternalID == externalID {
			return cloneOrder(o), nil
		}
	}
	return nil, errors.New("order not found")
}

func (f *fakeOrders) Update(_ context.Context, order *domain.Order) error {
	f.stored[order.ID] = cloneOrder(order)
	f.updates++
	return nil
}

type fakePortals struct {
	portal *portals.Portal
	err    error
}

func (f *fakePortals) GetByID(context.Context, string) (*portals.Portal, error) {
	return f.portal, f.err
}

type fakePuller struct {
	snapshot *tms.Snapshot
	err      error
	calls    int
}

func (f *fakePuller) GetOrder(context.Context, string) (*tms.Snapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

type fakeBus struct {
	published []pevents.Event
}

func (f *fakeBus) Publish(_ context.Context, event pevents.Event) { f.published = append(f.published, event) }
func (f *fakeBus) PublishSync(_ context.Context, event pevents.Event) error {
	f.published = append(f.published, event)
	return nil
}
func (f *fakeBus) Subscribe(string, pevents.Handler) {}

func (f *fakeBus) scheduleChanges() int {
	n := 0
	for _, e := range f.published {
		if _, ok := e.(ievents.OrderScheduleChanged); ok {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		WithheldSentinel:        "address withheld",
		WhiteGloveTransportType: "White Glove",
	}
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:       "ord-1",
		RefID:    1001,
		Status:   domain.StatusDispatched,
		PortalID: "portal-1",
		TMS:      domain.TMSSnapshot{ExternalID: "EXT-1"},
		Origin:   persistedStop(),
		Destination: domain.Stop{
			Contact: domain.Contact{Name: "Riley Delivery"},
			Address: domain.Address{Line1: "7 End St", City: "Dallas", State: "TX", Zip: "75201"},
		},
		Vehicles: []domain.Vehicle{{
			Make:    "Honda",
			Model:   "Civic",
			Pricing: domain.VehiclePricing{BaseCents: 80000, TotalCents: 100000},
		}},
		Notifications: domain.Notifications{
			Survey:                       domain.Channel{Status: domain.ChannelUnsent},
			SurveyReminder:               domain.Channel{Status: domain.ChannelUnsent},
			AwaitingPickupConfirmation:   true,
			AwaitingDeliveryConfirmation: true,
		},
	}
}

func testSnapshot() *tms.Snapshot {
	return &tms.Snapshot{
		ExternalID: "EXT-1",
		Status:     "picked_up",
		ChangedAt:  "2024-06-14T09:00:00Z",
		Pickup: tms.Leg{
			ScheduledAt: "2024-06-13T08:00:00Z",
			Venue:       fullVenue(),
		},
		Delivery: tms.Leg{
			ScheduledAt: "2024-06-18T08:00:00Z",
		},
		Vehicles: []tms.Vehicle{{Make: "Honda", Model: "Civic", Tariff: json.Number("1200")}},
	}
}

func newTestService(orders *fakeOrders, portalReader PortalReader, puller SnapshotPuller, bus ievents.Bus) *Service {
	svc := NewService(orders, portalReader, puller, bus, testConfig(), logger.New("development"))
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestApplySnapshotIdempotent(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	order, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	first, _ := json.Marshal(orders.stored["ord-1"])

	// Re-run on the already reconciled order; bypass the dedupe check by
	// reloading and clearing the persisted external updated_at.
	order, _ = orders.GetByID(context.Background(), "ord-1")
	order.TMS.UpdatedAt = nil
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	second, _ := json.Marshal(orders.stored["ord-1"])

	if string(first) != string(second) {
		t.Fatalf("same snapshot applied twice diverged:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestApplySnapshotDuplicateChangedAtIsNoop(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	order, _ := orders.GetByID(context.Background(), "ord-1")
	changed := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)
	order.TMS.UpdatedAt = &changed

	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("duplicate apply: %v", err)
	}
	if orders.updates != 0 {
		t.Fatalf("duplicate snapshot must not write, got %d updates", orders.updates)
	}
}

func TestApplySnapshotPortalLookupFailsClosed(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{err: errors.New("portal not found")}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	order, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err == nil {
		t.Fatal("missing portal must abort reconciliation")
	}
	if orders.updates != 0 {
		t.Fatalf("failed lookup must not write, got %d updates", orders.updates)
	}
}

func TestApplySnapshotExternalIDWriteOnce(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	snapshot := testSnapshot()
	snapshot.ExternalID = "EXT-OTHER"

	order, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), order, snapshot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := orders.stored["ord-1"].TMS.ExternalID; got != "EXT-1" {
		t.Fatalf("external id must be write-once, got %q", got)
	}
}

func TestApplySnapshotPreservesAwaitingFlags(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	order, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	stored := orders.stored["ord-1"]
	if !stored.Notifications.AwaitingPickupConfirmation || !stored.Notifications.AwaitingDeliveryConfirmation {
		t.Fatal("reconciliation must not touch the awaiting-confirmation flags")
	}
}

func TestApplySnapshotEmitsScheduleChangeOnce(t *testing.T) {
	orders := newFakeOrders(testOrder())
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	bus := &fakeBus{}
	svc := newTestService(orders, portalReader, nil, bus)

	order, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if bus.scheduleChanges() != 1 {
		t.Fatalf("new estimated windows should publish one schedule change, got %d", bus.scheduleChanges())
	}

	order, _ = orders.GetByID(context.Background(), "ord-1")
	order.TMS.UpdatedAt = nil
	if err := svc.ApplySnapshot(context.Background(), order, testSnapshot()); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if bus.scheduleChanges() != 1 {
		t.Fatalf("unchanged windows must not publish again, got %d", bus.scheduleChanges())
	}
}

func TestApplySnapshotWhiteGlovePreserved(t *testing.T) {
	order := testOrder()
	order.TransportType = "White Glove"
	orders := newFakeOrders(order)
	portalReader := &fakePortals{portal: &portals.Portal{ID: "portal-1"}}
	svc := newTestService(orders, portalReader, nil, &fakeBus{})

	snapshot := testSnapshot()
	snapshot.TransportType = "Open"

	loaded, _ := orders.GetByID(context.Background(), "ord-1")
	if err := svc.ApplySnapshot(context.Background(), loaded, snapshot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := orders.stored["ord-1"].TransportType; got != "White Glove" {
		t.Fatalf("white-glove transport type must be preserved, got %q", got)
	}
}

func TestReconcileWithoutExternalIDIsNoop(t *testing.T) {
	order := testOrder()
	order.TMS.ExternalID = ""
	orders := newFakeOrders(order)
	puller := &fakePuller{}
	svc := newTestService(orders, &fakePortals{}, puller, &fakeBus{})

	if err := svc.Reconcile(context.Background(), "ord-1"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if puller.calls != 0 {
		t.Fatal("no external id means no pull")
	}
	if orders.updates != 0 {
		t.Fatal("no external id means no write")
	}
}

func TestReconcilePullFailureLeavesOrderUntouched(t *testing.T) {
	orders := newFakeOrders(testOrder())
	puller := &fakePuller{err: errors.New("tms unavailable")}
	svc := newTestService(orders, &fakePortals{}, puller, &fakeBus{})

	if err := svc.Reconcile(context.Background(), "ord-1"); err == nil {
		t.Fatal("failed pull must surface an error")
	}
	if orders.updates != 0 {
		t.Fatal("failed pull must not write")
	}
}
