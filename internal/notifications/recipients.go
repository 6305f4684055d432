// Package notifications decides which stakeholders receive which
// time-sensitive notification, exactly once, from reconciled order state.
package notifications

import (
	"strings"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/portals"
)

// ConfirmationChannel selects which opt-in flag applies during recipient
// resolution.
type ConfirmationChannel string

const (
	ChannelPickup   ConfirmationChannel = "pickup"
	ChannelDelivery ConfirmationChannel = "delivery"
)

// RecipientConfig carries the portal-group designations.
type RecipientConfig struct {
	MMIPortalIDs  map[string]bool
	MMIOpsMailbox string
	SIRVAPortalID string
}

// IsMMI reports whether a portal belongs to the MMI group.
func (c RecipientConfig) IsMMI(portalID string) bool {
	return c.MMIPortalIDs[portalID]
}

// ResolveConfirmationRecipients builds the de-duplicated recipient set for a
// confirmation notification.
//
// Resolution order: the portal's notification list filtered to the channel's
// opt-ins; replaced wholesale by the operations mailbox for MMI portals;
// filtered by the order's domestic flag for the SIRVA portal; then the
// per-order agents opted into the channel and the legacy single-agent email
// are unioned in. Duplicates are dropped case-insensitively, first casing
// wins.
func ResolveConfirmationRecipients(order *domain.Order, portal *portals.Portal, channel ConfirmationChannel, cfg RecipientConfig) []string {
	seen := make(map[string]bool)
	var recipients []string
	add := func(email string) {
		trimmed := strings.TrimSpace(email)
		if trimmed == "" {
			return
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, trimmed)
	}

	var entries []portals.NotificationEntry
	for _, entry := range portal.NotificationEmails {
		switch channel {
		case ChannelPickup:
			if !entry.EnablePickup {
				continue
			}
		case ChannelDelivery:
			if !entry.EnableDelivery {
				continue
			}
		}
		entries = append(entries, entry)
	}

	if cfg.IsMMI(order.PortalID) && cfg.MMIOpsMailbox != "" {
		entries = []portals.NotificationEntry{{Email: cfg.MMIOpsMailbox}}
	}

	if cfg.SIRVAPortalID != "" && order.PortalID == cfg.SIRVAPortalID {
		filtered := make([]portals.NotificationEntry, 0, len(entries))
		for _, entry := range entries {
			// untagged entries receive both domestic and non-domestic orders
			if entry.Domestic == nil || *entry.Domestic == order.IsDomestic {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	for _, entry := range entries {
		add(entry.Email)
	}

	for _, agent := range order.Agents {
		switch channel {
		case ChannelPickup:
			if agent.EnablePickupNotifications {
				add(agent.Email)
			}
		case ChannelDelivery:
			if agent.EnableDeliveryNotifications {
				add(agent.Email)
			}
		}
	}

	add(order.LegacyAgentEmail)

	return recipients
}
