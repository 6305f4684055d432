// Package reconcile merges external order snapshots into the persisted order
// record. The merge is a pure function of (order, snapshot, now) so the same
// snapshot applied twice yields the same order.
package reconcile

import (
	"strings"
	"time"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/tms"
)

// validityFloor is the earliest instant the external system can plausibly
// report. Anything before it, or more than five years ahead, is garbage.
var validityFloor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseValidTime parses an external date string, accepting it only when it
// falls within [2000-01-01, now+5y]. Unparseable or out-of-range values are
// treated as absent, not as errors.
func parseValidTime(raw string, now time.Time) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		parsed = parsed.UTC()
		if parsed.Before(validityFloor) || parsed.After(now.AddDate(5, 0, 0)) {
			return nil
		}
		return &parsed
	}
	return nil
}

// LegTimes carries the instants derived from one external leg.
type LegTimes struct {
	Estimated *domain.TimeWindow
	Actual    *time.Time
	// ActualIsCaptureTime is set when Actual is the capture-time fallback
	// rather than an externally reported instant. The merge keeps an already
	// persisted completion stamp in that case so repeated runs stay stable.
	ActualIsCaptureTime bool
}

func deriveEstimated(leg tms.Leg, now time.Time) *domain.TimeWindow {
	start := parseValidTime(leg.ScheduledAt, now)
	if start == nil {
		return nil
	}
	window := &domain.TimeWindow{Start: *start}
	if end := parseValidTime(leg.ScheduledEndsAt, now); end != nil {
		window.End = end
	}
	return window
}

// DerivePickupTimes derives the estimated window and the actual pickup
// instant. The adjusted date wins; the scheduled date is only trusted once
// the external status says the order moved past intake.
func DerivePickupTimes(leg tms.Leg, rawStatus string, now time.Time) LegTimes {
	times := LegTimes{Estimated: deriveEstimated(leg, now)}

	if adjusted := parseValidTime(leg.AdjustedDate, now); adjusted != nil {
		times.Actual = adjusted
		return times
	}

	switch strings.ToLower(strings.TrimSpace(rawStatus)) {
	case "new", "accepted":
		return times
	}
	times.Actual = parseValidTime(leg.ScheduledAt, now)
	return times
}

// DeriveDeliveryTimes derives the estimated window and the actual delivery
// instant. Adjusted date, then completed-at; when the external status already
// says delivered or invoiced but no completion stamp exists, the capture time
// stands in.
func DeriveDeliveryTimes(leg tms.Leg, rawStatus string, now time.Time) LegTimes {
	times := LegTimes{Estimated: deriveEstimated(leg, now)}

	if adjusted := parseValidTime(leg.AdjustedDate, now); adjusted != nil {
		times.Actual = adjusted
		return times
	}
	if completed := parseValidTime(leg.CompletedAt, now); completed != nil {
		times.Actual = completed
		return times
	}

	switch strings.ToLower(strings.TrimSpace(rawStatus)) {
	case "delivered", "invoiced":
		stamp := now.UTC()
		times.Actual = &stamp
		times.ActualIsCaptureTime = true
	}
	return times
}

// FormatReference renders an instant in the configured reference timezone for
// display strings. Persisted values stay UTC.
func FormatReference(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2, 2006 3:04 PM MST")
}
