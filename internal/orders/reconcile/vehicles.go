package reconcile

import (
	"fmt"
	"strings"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
)

// MatchWarning reports a vehicle-matching condition worth surfacing, such as
// two persisted vehicles both matching the same external record.
type MatchWarning struct {
	ExternalIndex int
	Message       string
}

func (w MatchWarning) String() string {
	return fmt.Sprintf("vehicle[%d]: %s", w.ExternalIndex, w.Message)
}

// ReconcileVehicles matches external vehicle records against the persisted
// list and reprices the matches. VIN equality wins when both sides carry one;
// otherwise the first persisted vehicle with an equal make or model (case
// insensitive) is taken. Ambiguous matches are kept first-match-wins but
// reported. Unmatched external records are inserted priced at tariff with
// the order-level modifiers inherited.
func ReconcileVehicles(persisted []domain.Vehicle, external []tms.Vehicle, orderMods domain.PriceModifiers) ([]domain.Vehicle, []MatchWarning) {
	result := make([]domain.Vehicle, len(persisted))
	copy(result, persisted)

	var warnings []MatchWarning
	claimed := make(map[int]bool, len(persisted))

	for i, ext := range external {
		idx, ambiguous := matchVehicle(result, ext, claimed)
		if idx < 0 {
			result = append(result, newVehicle(ext, orderMods))
			continue
		}
		if ambiguous {
			warnings = append(warnings, MatchWarning{
				ExternalIndex: i,
				Message:       fmt.Sprintf("%s %s matched more than one persisted vehicle, kept first match", ext.Make, ext.Model),
			})
		}
		claimed[idx] = true
		result[idx] = repriceVehicle(result[idx], ext, orderMods)
	}

	return result, warnings
}

// matchVehicle finds the persisted vehicle for one external record. Returns
// the index (or -1) plus whether a second unclaimed candidate also matched.
func matchVehicle(persisted []domain.Vehicle, ext tms.Vehicle, claimed map[int]bool) (int, bool) {
	if ext.VIN != "" {
		for i, v := range persisted {
			if !claimed[i] && v.VIN != "" && strings.EqualFold(v.VIN, ext.VIN) {
				return i, false
			}
		}
	}

	found := -1
	ambiguous := false
	for i, v := range persisted {
		if claimed[i] {
			continue
		}
		if strings.EqualFold(v.Make, ext.Make) || strings.EqualFold(v.Model, ext.Model) {
			if found < 0 {
				found = i
			} else {
				ambiguous = true
				break
			}
		}
	}
	return found, ambiguous
}

// repriceVehicle applies the external tariff to a matched vehicle. The price
// delta between the persisted total and the tariff is absorbed into the base
// so the brokerage modifiers stay intact. A missing tariff leaves pricing
// untouched.
func repriceVehicle(v domain.Vehicle, ext tms.Vehicle, orderMods domain.PriceModifiers) domain.Vehicle {
	if ext.VIN != "" {
		v.VIN = ext.VIN
	}
	if ext.Year != nil {
		v.Year = ext.Year
	}
	v.IsInoperable = ext.IsInoperable

	tariff, ok := ext.TariffCents()
	if !ok {
		return v
	}

	commission := v.Pricing.Modifiers.CommissionCents
	if commission == 0 {
		commission = orderMods.CommissionCents
	}
	companyTariff := v.Pricing.Modifiers.CompanyTariffCents
	if companyTariff == 0 {
		companyTariff = orderMods.CompanyTariffCents
	}

	delta := v.Pricing.TotalCents - tariff
	v.Pricing.BaseCents -= delta
	v.Pricing.TotalCents = tariff
	v.Pricing.Modifiers = domain.PriceModifiers{
		CommissionCents:    commission,
		CompanyTariffCents: companyTariff,
	}
	v.Pricing.TotalWithCompanyTariffAndCommissionCents = tariff + commission + companyTariff
	return v
}

// newVehicle builds a vehicle for an external record with no persisted match.
func newVehicle(ext tms.Vehicle, orderMods domain.PriceModifiers) domain.Vehicle {
	tariff, _ := ext.TariffCents()
	return domain.Vehicle{
		Make:         ext.Make,
		Model:        ext.Model,
		Year:         ext.Year,
		VIN:          ext.VIN,
		IsInoperable: ext.IsInoperable,
		Pricing: domain.VehiclePricing{
			BaseCents: tariff,
			Modifiers: domain.PriceModifiers{
				CommissionCents:    orderMods.CommissionCents,
				CompanyTariffCents: orderMods.CompanyTariffCents,
			},
			TotalCents:                               tariff,
			TotalWithCompanyTariffAndCommissionCents: tariff + orderMods.CommissionCents + orderMods.CompanyTariffCents,
		},
	}
}
