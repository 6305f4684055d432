package notifications

import (
	"reflect"
	"testing"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/portals"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveRecipientsChannelFilter(t *testing.T) {
	portal := &portals.Portal{
		ID: "portal-1",
		NotificationEmails: []portals.NotificationEntry{
			{Email: "pickup@portal.example", EnablePickup: true},
			{Email: "delivery@portal.example", EnableDelivery: true},
			{Email: "both@portal.example", EnablePickup: true, EnableDelivery: true},
		},
	}
	order := &domain.Order{PortalID: "portal-1"}

	got := ResolveConfirmationRecipients(order, portal, ChannelPickup, RecipientConfig{})
	want := []string{"pickup@portal.example", "both@portal.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pickup recipients = %v, want %v", got, want)
	}

	got = ResolveConfirmationRecipients(order, portal, ChannelDelivery, RecipientConfig{})
	want = []string{"delivery@portal.example", "both@portal.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("delivery recipients = %v, want %v", got, want)
	}
}

func TestResolveRecipientsDeduplicatesCaseInsensitively(t *testing.T) {
	portal := &portals.Portal{
		ID: "portal-1",
		NotificationEmails: []portals.NotificationEntry{
			{Email: "Agent@Example.com", EnablePickup: true},
		},
	}
	order := &domain.Order{
		PortalID: "portal-1",
		Agents: []domain.Agent{
			{Email: "agent@example.com", EnablePickupNotifications: true},
		},
		LegacyAgentEmail: "AGENT@EXAMPLE.COM",
	}

	got := ResolveConfirmationRecipients(order, portal, ChannelPickup, RecipientConfig{})
	if len(got) != 1 {
		t.Fatalf("shared email must produce exactly one dispatch, got %v", got)
	}
	if got[0] != "Agent@Example.com" {
		t.Errorf("first casing should win, got %q", got[0])
	}
}

func TestResolveRecipientsMMIReplacesPortalList(t *testing.T) {
	portal := &portals.Portal{
		ID: "portal-mmi",
		NotificationEmails: []portals.NotificationEntry{
			{Email: "regular@portal.example", EnablePickup: true},
		},
	}
	order := &domain.Order{
		PortalID: "portal-mmi",
		Agents: []domain.Agent{
			{Email: "agent@example.com", EnablePickupNotifications: true},
		},
	}
	cfg := RecipientConfig{
		MMIPortalIDs:  map[string]bool{"portal-mmi": true},
		MMIOpsMailbox: "ops@broker.example",
	}

	got := ResolveConfirmationRecipients(order, portal, ChannelPickup, cfg)
	want := []string{"ops@broker.example", "agent@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MMI order should use the ops mailbox plus agents, got %v", got)
	}
}

func TestResolveRecipientsSIRVADomesticFilter(t *testing.T) {
	portal := &portals.Portal{
		ID: "portal-sirva",
		NotificationEmails: []portals.NotificationEntry{
			{Email: "domestic@sirva.example", EnableDelivery: true, Domestic: boolPtr(true)},
			{Email: "international@sirva.example", EnableDelivery: true, Domestic: boolPtr(false)},
			{Email: "always@sirva.example", EnableDelivery: true},
		},
	}
	cfg := RecipientConfig{SIRVAPortalID: "portal-sirva"}

	domestic := &domain.Order{PortalID: "portal-sirva", IsDomestic: true}
	got := ResolveConfirmationRecipients(domestic, portal, ChannelDelivery, cfg)
	want := []string{"domestic@sirva.example", "always@sirva.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("domestic order recipients = %v, want %v", got, want)
	}

	international := &domain.Order{PortalID: "portal-sirva", IsDomestic: false}
	got = ResolveConfirmationRecipients(international, portal, ChannelDelivery, cfg)
	want = []string{"international@sirva.example", "always@sirva.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("international order recipients = %v, want %v", got, want)
	}
}

func TestResolveRecipientsLegacyAgentIncluded(t *testing.T) {
	portal := &portals.Portal{ID: "portal-1"}
	order := &domain.Order{PortalID: "portal-1", LegacyAgentEmail: "legacy@example.com"}

	got := ResolveConfirmationRecipients(order, portal, ChannelPickup, RecipientConfig{})
	if len(got) != 1 || got[0] != "legacy@example.com" {
		t.Fatalf("legacy agent email should be included, got %v", got)
	}
}
