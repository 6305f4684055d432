package reconcile

import (
	"testing"

	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/portals"
)

func TestAuditContactCleanProfile(t *testing.T) {
	external := &tms.Customer{
		Name:        "Acme Relocation",
		Email:       "OPS@ACME.example",
		ContactName: "Jo Smith",
		Phone:       "+1 (555) 010-0200",
	}
	profile := portals.ContactProfile{
		CompanyName: "acme relocation",
		ContactName: "jo smith",
		Email:       "ops@acme.example",
		Phone:       "15550100200",
	}

	if mismatches := AuditContact(external, profile); len(mismatches) != 0 {
		t.Fatalf("expected no drift, got %v", mismatches)
	}
}

func TestAuditContactReportsDriftedFields(t *testing.T) {
	external := &tms.Customer{
		Name:        "Acme Relocation LLC",
		Email:       "billing@acme.example",
		ContactName: "Jo Smith",
		Phone:       "555-010-9999",
	}
	profile := portals.ContactProfile{
		CompanyName: "Acme Relocation",
		ContactName: "Jo Smith",
		Email:       "ops@acme.example",
		Phone:       "555-010-0200",
	}

	mismatches := AuditContact(external, profile)
	if len(mismatches) != 3 {
		t.Fatalf("expected 3 drifted fields, got %v", mismatches)
	}
	fields := map[string]bool{}
	for _, m := range mismatches {
		fields[m.Field] = true
	}
	for _, want := range []string{"name", "email", "phone"} {
		if !fields[want] {
			t.Errorf("missing mismatch for %q in %v", want, mismatches)
		}
	}
}

func TestAuditContactNilCustomer(t *testing.T) {
	if got := AuditContact(nil, portals.ContactProfile{CompanyName: "Acme"}); got != nil {
		t.Fatalf("nil customer block should audit clean, got %v", got)
	}
}
