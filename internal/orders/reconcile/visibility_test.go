package reconcile

import (
	"testing"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
)

const testSentinel = "address withheld"

func strPtr(s string) *string { return &s }

func persistedStop() domain.Stop {
	return domain.Stop{
		Contact: domain.Contact{Name: "Dana Pickup", Phone: "555-0100", MobilePhone: "555-0101"},
		Address: domain.Address{Line1: "12 Old Rd", City: "Austin", State: "TX", Zip: "73301"},
		Notes:   "gate code 4411",
	}
}

func fullVenue() *tms.Venue {
	return &tms.Venue{
		Address:     strPtr("99 New Ave"),
		City:        strPtr("Dallas"),
		State:       strPtr("TX"),
		Zip:         strPtr("75-201"),
		ContactName: strPtr("Carrier Contact"),
		Phone:       strPtr("555-0200"),
		MobilePhone: strPtr("555-0201"),
		Notes:       strPtr("dock 3"),
	}
}

func TestMergeStopExternalWins(t *testing.T) {
	merged := MergeStop(persistedStop(), fullVenue(), false, testSentinel)

	if merged.Address.Line1 != "99 New Ave" || merged.Address.City != "Dallas" {
		t.Errorf("external address should win, got %+v", merged.Address)
	}
	if merged.Address.Zip != "75201" {
		t.Errorf("zip should be digit-stripped, got %q", merged.Address.Zip)
	}
	if merged.Contact.Name != "Carrier Contact" || merged.Notes != "dock 3" {
		t.Errorf("contact and notes should come from the venue, got %+v", merged)
	}
}

func TestMergeStopWithheldAddressUntouched(t *testing.T) {
	persisted := persistedStop()
	persisted.Address.Line1 = "Address Withheld until approval"

	merged := MergeStop(persisted, fullVenue(), false, testSentinel)

	if merged.Address.Line1 != persisted.Address.Line1 ||
		merged.Address.City != "Austin" ||
		merged.Address.State != "TX" ||
		merged.Address.Zip != "73301" {
		t.Fatalf("withheld address block must not change, got %+v", merged.Address)
	}
	// contact still follows the external side
	if merged.Contact.Name != "Carrier Contact" {
		t.Errorf("contact should still be external, got %+v", merged.Contact)
	}
}

func TestMergeStopVisibilityTagWithheld(t *testing.T) {
	persisted := persistedStop()
	persisted.Address.Visibility = domain.VisibilityWithheld

	merged := MergeStop(persisted, fullVenue(), false, testSentinel)
	if merged.Address.Line1 != "12 Old Rd" {
		t.Fatalf("tagged address must not change, got %q", merged.Address.Line1)
	}
	if merged.Address.Visibility != domain.VisibilityWithheld {
		t.Error("visibility tag must survive the merge")
	}
}

func TestMergeStopPartialOrderPreservesEverything(t *testing.T) {
	persisted := persistedStop()
	merged := MergeStop(persisted, fullVenue(), true, testSentinel)

	if merged.Contact != persisted.Contact {
		t.Errorf("partial order contact must be untouched, got %+v", merged.Contact)
	}
	if merged.Address != persisted.Address {
		t.Errorf("partial order address must be untouched, got %+v", merged.Address)
	}
}

func TestMergeStopAbsentVenuePreservesEverything(t *testing.T) {
	persisted := persistedStop()
	merged := MergeStop(persisted, nil, false, testSentinel)
	if merged.Contact != persisted.Contact || merged.Address != persisted.Address {
		t.Fatalf("absent venue must leave the stop untouched, got %+v", merged)
	}
}

func TestMergeStopRemovedFieldsKeepPersisted(t *testing.T) {
	venue := fullVenue()
	venue.Address = nil
	venue.Zip = nil

	merged := MergeStop(persistedStop(), venue, false, testSentinel)

	if merged.Address.Line1 != "12 Old Rd" {
		t.Errorf("removed line1 should keep persisted value, got %q", merged.Address.Line1)
	}
	if merged.Address.Zip != "73301" {
		t.Errorf("removed zip should keep persisted value, got %q", merged.Address.Zip)
	}
	if merged.Address.City != "Dallas" {
		t.Errorf("present city should be taken, got %q", merged.Address.City)
	}
}
