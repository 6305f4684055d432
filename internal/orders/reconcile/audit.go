package reconcile

import (
	"strings"

	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/platform/phone"
)

// Mismatch is one field where the external system's customer record drifted
// from the portal's configured contact profile.
type Mismatch struct {
	Field    string
	External string
	Portal   string
}

// AuditContact cross-checks the external customer block against the owning
// portal's contact profile. Purely diagnostic: nothing on either side is
// changed, the caller logs the result. Names and emails compare case
// insensitively, phones compare digit-only.
func AuditContact(external *tms.Customer, profile portals.ContactProfile) []Mismatch {
	if external == nil {
		return nil
	}

	var mismatches []Mismatch

	if !foldEqual(external.Name, profile.CompanyName) {
		mismatches = append(mismatches, Mismatch{Field: "name", External: external.Name, Portal: profile.CompanyName})
	}
	if !foldEqual(external.Email, profile.Email) {
		mismatches = append(mismatches, Mismatch{Field: "email", External: external.Email, Portal: profile.Email})
	}
	if !foldEqual(external.ContactName, profile.ContactName) {
		mismatches = append(mismatches, Mismatch{Field: "contactName", External: external.ContactName, Portal: profile.ContactName})
	}
	if !phone.LooseEqual(external.Phone, profile.Phone) {
		mismatches = append(mismatches, Mismatch{Field: "phone", External: external.Phone, Portal: profile.Phone})
	}

	return mismatches
}

func foldEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
