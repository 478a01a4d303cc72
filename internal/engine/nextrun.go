package engine

import (
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// nextFire computes the first occurrence of the schedule's configured
// time strictly after now, in now's location.
func nextFire(now time.Time, sched model.Schedule) time.Time {
	switch sched.Frequency {
	case model.FrequencyWeekly:
		days := (int(sched.DayOfWeek) - int(now.Weekday()) + 7) % 7
		candidate := time.Date(now.Year(), now.Month(), now.Day()+days,
			sched.Hour, sched.Minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate

	case model.FrequencyMonthly:
		candidate := monthlyOccurrence(now.Year(), now.Month(), sched.DayOfMonth,
			sched.Hour, sched.Minute, now.Location())
		if !candidate.After(now) {
			candidate = monthlyOccurrence(now.Year(), now.Month()+1, sched.DayOfMonth,
				sched.Hour, sched.Minute, now.Location())
		}
		return candidate

	default: // daily
		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			sched.Hour, sched.Minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}
}

// monthlyOccurrence places day-of-month within the given month,
// clamping a day past the month's end to its last day.
func monthlyOccurrence(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	// day zero of the following month is this month's last day
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
