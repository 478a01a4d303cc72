package packets

import (
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/history"
	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// ScheduleResponse mirrors model.Schedule but flattens times to RFC3339
// and renders the fire time the way it was submitted: a lowercase day
// name and a 24h HH:MM clock.
type ScheduleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Frequency   string `json:"frequency"`
	DayOfWeek   string `json:"day_of_week,omitempty"`
	DayOfMonth  int    `json:"day_of_month,omitempty"`
	Time        string `json:"time"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`

	LastRunAt      string `json:"last_run_at,omitempty"`
	LastRunStatus  string `json:"last_run_status"`
	LastRunMessage string `json:"last_run_message,omitempty"`
	NextRunAt      string `json:"next_run_at,omitempty"`
}

// NewScheduleResponse flattens a schedule; nextRun is nil when no
// trigger is armed for it.
func NewScheduleResponse(s model.Schedule, nextRun *time.Time) ScheduleResponse {
	response := ScheduleResponse{
		ID:             s.ID,
		Name:           s.Name,
		Source:         s.Source,
		Destination:    s.Destination,
		Frequency:      string(s.Frequency),
		Time:           model.FormatClock(s.Hour, s.Minute),
		Email:          s.Email,
		Active:         s.Active,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
		LastRunStatus:  string(s.LastRunStatus),
		LastRunMessage: s.LastRunMessage,
	}
	switch s.Frequency {
	case model.FrequencyWeekly:
		response.DayOfWeek = strings.ToLower(s.DayOfWeek.String())
	case model.FrequencyMonthly:
		response.DayOfMonth = s.DayOfMonth
	}
	if s.LastRunAt != nil {
		response.LastRunAt = s.LastRunAt.Format(time.RFC3339)
	}
	if nextRun != nil {
		response.NextRunAt = nextRun.Format(time.RFC3339)
	}
	return response
}

// RunResponse mirrors history.Record but flattens times.
type RunResponse struct {
	ID               int64   `json:"id"`
	ScheduleID       string  `json:"schedule_id"`
	ScheduleName     string  `json:"schedule_name"`
	Status           string  `json:"status"`
	Manual           bool    `json:"manual"`
	StartedAt        string  `json:"started_at"`
	FinishedAt       string  `json:"finished_at"`
	DurationSeconds  float64 `json:"duration_seconds"`
	ExitCode         int     `json:"exit_code"`
	FilesTransferred int     `json:"files_transferred"`
	BytesTransferred int64   `json:"bytes_transferred"`
	Message          string  `json:"message,omitempty"`
}

func NewRunResponse(rec history.Record) RunResponse {
	return RunResponse{
		ID:               rec.ID,
		ScheduleID:       rec.ScheduleID,
		ScheduleName:     rec.ScheduleName,
		Status:           string(rec.Status),
		Manual:           rec.Manual,
		StartedAt:        rec.StartedAt.Format(time.RFC3339),
		FinishedAt:       rec.FinishedAt.Format(time.RFC3339),
		DurationSeconds:  rec.FinishedAt.Sub(rec.StartedAt).Seconds(),
		ExitCode:         rec.ExitCode,
		FilesTransferred: rec.FilesTransferred,
		BytesTransferred: rec.BytesTransferred,
		Message:          rec.Message,
	}
}

// TriggerResponse is one armed fire time in the system status view.
type TriggerResponse struct {
	ScheduleID string `json:"schedule_id"`
	NextRunAt  string `json:"next_run_at"`
}
