package model

import (
	"errors"
	"testing"
	"time"
)

func validDraft() Draft {
	return Draft{
		Name:        "Docs",
		Source:      "/media/usb/docs",
		Destination: "/backups/docs",
		Frequency:   FrequencyWeekly,
		DayOfWeek:   time.Monday,
		Hour:        2,
		Minute:      0,
		Email:       "ops@example.com",
		Active:      true,
	}
}

func TestDraftValidateAcceptsValid(t *testing.T) {
	if err := validDraft().Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
}

func TestDraftValidateRejectsBadDrafts(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"empty name", func(d *Draft) { d.Name = "  " }, "name"},
		{"empty source", func(d *Draft) { d.Source = "" }, "source"},
		{"empty destination", func(d *Draft) { d.Destination = "" }, "destination"},
		{"source equals destination", func(d *Draft) { d.Destination = "/media/usb/docs/" }, "destination"},
		{"unknown frequency", func(d *Draft) { d.Frequency = "hourly" }, "frequency"},
		{"day of month too small", func(d *Draft) { d.Frequency = FrequencyMonthly; d.DayOfMonth = 0 }, "day_of_month"},
		{"day of month too large", func(d *Draft) { d.Frequency = FrequencyMonthly; d.DayOfMonth = 32 }, "day_of_month"},
		{"hour out of range", func(d *Draft) { d.Hour = 24 }, "hour"},
		{"minute out of range", func(d *Draft) { d.Minute = 60 }, "minute"},
		{"malformed email", func(d *Draft) { d.Email = "not-an-address" }, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := d.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestDraftValidateAllowsEmptyEmail(t *testing.T) {
	d := validDraft()
	d.Email = ""
	if err := d.Validate(); err != nil {
		t.Fatalf("draft without email rejected: %v", err)
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("Monday")
	if err != nil {
		t.Fatalf("ParseWeekday: %v", err)
	}
	if day != time.Monday {
		t.Errorf("expected Monday, got %v", day)
	}
	if _, err := ParseWeekday("funday"); err == nil {
		t.Error("expected error for unknown day name")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("02:30")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	if h != 2 || m != 30 {
		t.Errorf("expected 02:30, got %02d:%02d", h, m)
	}
	for _, bad := range []string{"25:00", "12:61", "2 pm", ""} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	if got := FormatClock(2, 5); got != "02:05" {
		t.Errorf("FormatClock = %q, want 02:05", got)
	}
}
