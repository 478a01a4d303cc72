// exposes the Store interface that API endpoints and the trigger engine consume
package store

import (
	"errors"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// ErrNotFound is returned for lookups of unknown schedule ids.
var ErrNotFound = errors.New("schedule not found")

type Store interface {
	// ListSchedules returns every schedule in insertion order.
	ListSchedules() []model.Schedule
	GetSchedule(id string) (model.Schedule, error)
	CreateSchedule(draft model.Draft) (model.Schedule, error)
	UpdateSchedule(id string, draft model.Draft) (model.Schedule, error)
	DeleteSchedule(id string) error

	// RecordRun updates only the last-run fields of a schedule.
	RecordRun(id string, outcome model.RunOutcome) error
}
