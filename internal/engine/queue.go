package engine

import "time"

// Trigger is the runtime arming record for one active schedule. It
// carries only the owning schedule's id; current parameters are
// re-read from the store at fire time.
type Trigger struct {
	ScheduleID string
	NextFire   time.Time

	index int
}

// triggerQueue is a min-heap ordered by fire time, with the schedule
// id as a deterministic tie-break.
type triggerQueue []*Trigger

func (q triggerQueue) Len() int { return len(q) }

func (q triggerQueue) Less(i, j int) bool {
	if q[i].NextFire.Equal(q[j].NextFire) {
		return q[i].ScheduleID < q[j].ScheduleID
	}
	return q[i].NextFire.Before(q[j].NextFire)
}

func (q triggerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *triggerQueue) Push(x any) {
	t := x.(*Trigger)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *triggerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// peek returns the earliest trigger without removing it.
func (q triggerQueue) peek() *Trigger {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
