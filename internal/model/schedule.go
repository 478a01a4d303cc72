package model

import (
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"
	"time"
)

// Frequency selects how often a schedule fires.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Schedule is one recurring copy job: what to copy, where, and when.
type Schedule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Frequency   Frequency `json:"frequency"`

	// DayOfWeek is meaningful for weekly schedules, DayOfMonth for
	// monthly ones. A DayOfMonth past the end of a short month fires
	// on that month's last day.
	DayOfWeek  time.Weekday `json:"day_of_week"`
	DayOfMonth int          `json:"day_of_month"`
	Hour       int          `json:"hour"`
	Minute     int          `json:"minute"`

	Email  string `json:"email"`
	Active bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus  RunStatus  `json:"last_run_status"`
	LastRunMessage string     `json:"last_run_message,omitempty"`
}

// Draft carries the user-supplied fields of a Schedule. Create and
// update both take a full draft; identifiers and run metadata are
// never part of it.
type Draft struct {
	Name        string
	Source      string
	Destination string
	Frequency   Frequency
	DayOfWeek   time.Weekday
	DayOfMonth  int
	Hour        int
	Minute      int
	Email       string
	Active      bool
}

// Validate checks every draft invariant and reports the first violation.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Source) == "" {
		return &ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Destination) == "" {
		return &ValidationError{Field: "destination", Reason: "must not be empty"}
	}
	if filepath.Clean(d.Source) == filepath.Clean(d.Destination) {
		return &ValidationError{Field: "destination", Reason: "must differ from source"}
	}
	switch d.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if d.DayOfWeek < time.Sunday || d.DayOfWeek > time.Saturday {
			return &ValidationError{Field: "day_of_week", Reason: "must be a valid weekday"}
		}
	case FrequencyMonthly:
		if d.DayOfMonth < 1 || d.DayOfMonth > 31 {
			return &ValidationError{Field: "day_of_month", Reason: "must be between 1 and 31"}
		}
	default:
		return &ValidationError{Field: "frequency", Reason: "must be daily, weekly or monthly"}
	}
	if d.Hour < 0 || d.Hour > 23 {
		return &ValidationError{Field: "hour", Reason: "must be between 0 and 23"}
	}
	if d.Minute < 0 || d.Minute > 59 {
		return &ValidationError{Field: "minute", Reason: "must be between 0 and 59"}
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			return &ValidationError{Field: "email", Reason: "must be a valid address"}
		}
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a lowercase English day name to its weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	if d, ok := weekdays[strings.ToLower(name)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ParseClock parses a 24h "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatClock renders an hour and minute as 24h "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
