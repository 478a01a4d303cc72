package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// ScheduleRequest carries the full schedule draft. Create and update
// both bind it; update replaces every user-supplied field.
type ScheduleRequest struct {
	Name        string `json:"name" binding:"required"`
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Frequency   string `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	DayOfWeek   string `json:"day_of_week" binding:"omitempty,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	DayOfMonth  int    `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	Time        string `json:"time" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Active      *bool  `json:"active"`
}

// Draft converts the wire shape into a model draft. Omitted fields take
// the defaults the dashboard offers: Monday, the 1st, active.
func (r ScheduleRequest) Draft() (model.Draft, error) {
	draft := model.Draft{
		Name:        r.Name,
		Source:      r.Source,
		Destination: r.Destination,
		Frequency:   model.Frequency(r.Frequency),
		DayOfWeek:   time.Monday,
		DayOfMonth:  r.DayOfMonth,
		Email:       r.Email,
		Active:      true,
	}
	if r.Active != nil {
		draft.Active = *r.Active
	}
	if draft.Frequency == model.FrequencyMonthly && draft.DayOfMonth == 0 {
		draft.DayOfMonth = 1
	}

	hour, minute, err := model.ParseClock(r.Time)
	if err != nil {
		return model.Draft{}, err
	}
	draft.Hour, draft.Minute = hour, minute

	if r.DayOfWeek != "" {
		day, err := model.ParseWeekday(r.DayOfWeek)
		if err != nil {
			return model.Draft{}, err
		}
		draft.DayOfWeek = day
	}
	return draft, nil
}

type TestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type FolderSearchRequest struct {
	Path string `json:"path" binding:"required"`
}

type FolderCreateRequest struct {
	Path string `json:"path" binding:"required"`
}

type RunsQuery struct {
	Limit int `form:"limit"`
}
