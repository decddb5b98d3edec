package timezone_test

import (
	"testing"
	"time"

	"portal/shared/timezone"
)

func TestNowAndLocation(t *testing.T) {
	if timezone.Now().IsZero() {
		t.Error("Now() returned zero time")
	}

	if timezone.GetLocation() == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestToAppTimeKeepsInstant(t *testing.T) {
	utcTime := time.Now().UTC()
	appTime := timezone.ToAppTime(utcTime)

	if appTime.Location() == nil {
		t.Error("expected converted time to have a location")
	}

	if !appTime.Equal(utcTime) {
		t.Error("expected conversion to keep the same instant")
	}
}

func TestFormatAndParse(t *testing.T) {
	testTime := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	if timezone.Format(testTime, "2006-01-02 15:04:05 MST") == "" {
		t.Error("Format() returned empty string")
	}

	parsed, err := timezone.Parse("2006-01-02", "2026-02-01")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if parsed.IsZero() {
		t.Error("Parse() returned a zero time")
	}

	if parsed.Location() != timezone.GetLocation() {
		t.Error("expected Parse() to use the application location")
	}
}
