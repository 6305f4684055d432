package domain

import "strings"

// Status is the canonical order status vocabulary.
type Status string

const (
	StatusNew        Status = "New"
	StatusDispatched Status = "Dispatched"
	StatusPickedUp   Status = "Picked Up"
	StatusDelivered  Status = "Delivered"
	StatusInvoiced   Status = "Invoiced"
	StatusCanceled   Status = "Canceled"
	StatusArchived   Status = "Archived"
)

// statusSynonyms maps title-cased external vocabulary onto canonical values.
var statusSynonyms = map[string]Status{
	"Invoiced":       StatusDelivered,
	"Picked up":      StatusPickedUp,
	"Order canceled": StatusCanceled,
}

// NormalizeStatus maps a raw external status string to the canonical
// vocabulary. Lower-cases, turns underscores into spaces, trims, title-cases
// the first word, applies the synonym table, then collapses Accepted/New/
// Pending into New. Total function; unknown values pass through title-cased.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return StatusNew
	}

	s = strings.ToUpper(s[:1]) + s[1:]

	if canonical, ok := statusSynonyms[s]; ok {
		return canonical
	}

	switch s {
	case "Accepted", "New", "Pending":
		return StatusNew
	}

	return Status(s)
}
