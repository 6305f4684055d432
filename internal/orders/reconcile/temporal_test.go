package reconcile

import (
	"testing"
	"time"

	"transport_broker_backend/internal/orders/tms"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParseValidTime(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"rfc3339", "2024-06-10T08:00:00Z", true},
		{"date only", "2024-06-10", true},
		{"space separated", "2024-06-10 08:00:00", true},
		{"before floor", "1999-12-31T23:59:59Z", false},
		{"too far ahead", "2031-01-01T00:00:00Z", false},
		{"garbage", "not-a-date", false},
		{"empty", "", false},
		{"blank", "   ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseValidTime(tc.raw, testNow)
			if (got != nil) != tc.want {
				t.Fatalf("parseValidTime(%q) accepted=%v, want %v", tc.raw, got != nil, tc.want)
			}
		})
	}
}

func TestDerivePickupTimesPrefersAdjustedDate(t *testing.T) {
	leg := tms.Leg{
		ScheduledAt:  "2024-06-10T08:00:00Z",
		AdjustedDate: "2024-06-11T09:00:00Z",
	}

	times := DerivePickupTimes(leg, "picked_up", testNow)
	if times.Actual == nil {
		t.Fatal("expected an actual pickup instant")
	}
	if times.Actual.Day() != 11 {
		t.Errorf("actual = %v, want the adjusted date", times.Actual)
	}
	if times.Estimated == nil || times.Estimated.Start.Day() != 10 {
		t.Errorf("estimated window should come from scheduled_at, got %+v", times.Estimated)
	}
}

func TestDerivePickupTimesIgnoresScheduledBeforeDispatch(t *testing.T) {
	leg := tms.Leg{ScheduledAt: "2024-06-10T08:00:00Z"}

	for _, status := range []string{"new", "accepted", "New", "ACCEPTED"} {
		times := DerivePickupTimes(leg, status, testNow)
		if times.Actual != nil {
			t.Errorf("status %q: scheduled_at must not count as an actual pickup", status)
		}
	}

	times := DerivePickupTimes(leg, "dispatched", testNow)
	if times.Actual == nil {
		t.Fatal("past intake, scheduled_at should back-fill the actual pickup")
	}
}

func TestDeriveDeliveryTimesFallbackChain(t *testing.T) {
	// adjusted wins over completed
	times := DeriveDeliveryTimes(tms.Leg{
		AdjustedDate: "2024-06-12T10:00:00Z",
		CompletedAt:  "2024-06-13T10:00:00Z",
	}, "delivered", testNow)
	if times.Actual == nil || times.Actual.Day() != 12 {
		t.Fatalf("adjusted date should win, got %v", times.Actual)
	}

	// completed when no adjusted
	times = DeriveDeliveryTimes(tms.Leg{CompletedAt: "2024-06-13T10:00:00Z"}, "delivered", testNow)
	if times.Actual == nil || times.Actual.Day() != 13 {
		t.Fatalf("completed_at should be used, got %v", times.Actual)
	}
	if times.ActualIsCaptureTime {
		t.Error("completed_at is externally reported, not a capture-time fallback")
	}

	// capture-time fallback only for delivered/invoiced
	times = DeriveDeliveryTimes(tms.Leg{}, "invoiced", testNow)
	if times.Actual == nil || !times.Actual.Equal(testNow) {
		t.Fatalf("delivered order without stamps should fall back to now, got %v", times.Actual)
	}
	if !times.ActualIsCaptureTime {
		t.Error("fallback must be marked as capture time")
	}

	times = DeriveDeliveryTimes(tms.Leg{}, "dispatched", testNow)
	if times.Actual != nil {
		t.Errorf("undelivered order must have no actual delivery, got %v", times.Actual)
	}
}

func TestFormatReference(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	got := FormatReference(time.Date(2024, 6, 15, 17, 30, 0, 0, time.UTC), loc)
	if got != "Jun 15, 2024 12:30 PM CDT" {
		t.Errorf("FormatReference = %q", got)
	}
}
