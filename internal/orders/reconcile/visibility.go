package reconcile

import (
	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/platform/phone"
)

// MergeStop merges the external venue block into a persisted stop.
//
// Ownership rules, evaluated per block:
//   - partial order or absent venue: the persisted stop is authoritative,
//     nothing changes;
//   - withheld address: contact, notes and coordinates follow the external
//     side, but line1/city/state/zip stay untouched no matter what the
//     external system sends;
//   - otherwise: each address field takes the external value unless the
//     external system removed that specific field (null), in which case the
//     persisted value stays. Zips are digit-stripped on the way in.
func MergeStop(persisted domain.Stop, venue *tms.Venue, isPartial bool, sentinel string) domain.Stop {
	if isPartial || venue == nil {
		return persisted
	}

	merged := persisted
	merged.Contact = domain.Contact{
		Name:        strOrEmpty(venue.ContactName),
		Phone:       strOrEmpty(venue.Phone),
		MobilePhone: strOrEmpty(venue.MobilePhone),
	}
	merged.Notes = strOrEmpty(venue.Notes)
	merged.Latitude = venue.Latitude
	merged.Longitude = venue.Longitude

	if persisted.Address.IsWithheld(sentinel) {
		return merged
	}

	if venue.Address != nil {
		merged.Address.Line1 = *venue.Address
	}
	if venue.City != nil {
		merged.Address.City = *venue.City
	}
	if venue.State != nil {
		merged.Address.State = *venue.State
	}
	if venue.Zip != nil {
		merged.Address.Zip = phone.Digits(*venue.Zip)
	}
	return merged
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
