package model

import "time"

// RunStatus classifies the result of one synchronization run.
type RunStatus string

const (
	RunNever   RunStatus = "never"
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
	RunSkipped RunStatus = "skipped"
)

// RunOutcome is what a single run produced. Callers always receive one,
// including for runs that were skipped because an earlier run of the
// same schedule was still in flight.
type RunOutcome struct {
	Status           RunStatus
	StartedAt        time.Time
	FinishedAt       time.Time
	ExitCode         int
	FilesTransferred int
	BytesTransferred int64
	Message          string
}

func (o RunOutcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}
