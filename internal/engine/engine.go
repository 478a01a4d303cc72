package engine

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/history"
	"github.com/Nixie-Tech-LLC/nereus/internal/metrics"
	"github.com/Nixie-Tech-LLC/nereus/internal/model"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
)

// ErrRunInFlight is returned for a manual run request while the
// schedule's previous run is still executing.
var ErrRunInFlight = errors.New("a run for this schedule is already in flight")

// idleWait bounds the loop's sleep when no trigger is armed.
const idleWait = time.Hour

// Runner executes one synchronization run.
type Runner interface {
	Run(ctx context.Context, sched model.Schedule) model.RunOutcome
	InFlight(id string) bool
}

// Notifier reports finished runs to the operator.
type Notifier interface {
	RunFinished(sched model.Schedule, outcome model.RunOutcome, manual bool)
}

// RunLog keeps the durable per-run history.
type RunLog interface {
	Insert(rec history.Record) error
}

// Config carries the engine's collaborators.
type Config struct {
	Store    store.Store
	Runner   Runner
	Notifier Notifier
	RunLog   RunLog
	Metrics  metrics.Recorder

	// Now is the clock used for fire-time computation. Defaults to time.Now.
	Now func() time.Time
}

// Engine owns the trigger set: one armed trigger per active schedule,
// kept in a fire-time ordered queue drained by a single scheduling
// loop. Triggers are never persisted; Reconcile rebuilds the whole set
// from the schedule store, so the two can never diverge across a
// restart.
type Engine struct {
	store    store.Store
	runner   Runner
	notifier Notifier
	runLog   RunLog
	metrics  metrics.Recorder
	now      func() time.Time

	mu    sync.Mutex
	queue triggerQueue
	wake  chan struct{}

	runs sync.WaitGroup
}

func New(cfg Config) *Engine {
	e := &Engine{
		store:    cfg.Store,
		runner:   cfg.Runner,
		notifier: cfg.Notifier,
		runLog:   cfg.RunLog,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
		wake:     make(chan struct{}, 1),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.metrics == nil {
		e.metrics = metrics.NewNoop()
	}
	return e
}

// Reconcile rebuilds the trigger set from the schedule store. Called at
// startup and after every schedule mutation. Rebuilding from scratch
// keeps the queue a pure function of the store and the clock.
func (e *Engine) Reconcile() {
	schedules := e.store.ListSchedules()
	now := e.now()

	e.mu.Lock()
	e.queue = computeTriggers(now, schedules)
	heap.Init(&e.queue)
	armed := e.queue.Len()
	e.mu.Unlock()

	e.metrics.TriggersArmed(armed)
	e.poke()
	log.Debug().Int("armed", armed).Msg("triggers reconciled")
}

// computeTriggers derives the armed trigger set for the given schedules.
func computeTriggers(now time.Time, schedules []model.Schedule) triggerQueue {
	q := make(triggerQueue, 0, len(schedules))
	for _, sched := range schedules {
		if !sched.Active {
			continue
		}
		q = append(q, &Trigger{ScheduleID: sched.ID, NextFire: nextFire(now, sched)})
	}
	for i := range q {
		q[i].index = i
	}
	return q
}

// Run drives the scheduling loop until ctx is canceled. The loop
// sleeps until the earliest armed fire time and wakes early whenever
// Reconcile changes the queue.
func (e *Engine) Run(ctx context.Context) {
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.untilNext())

		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		case <-timer.C:
			e.fireDue()
		}
	}
}

func (e *Engine) untilNext() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	head := e.queue.peek()
	if head == nil {
		return idleWait
	}
	if d := head.NextFire.Sub(e.now()); d > 0 {
		return d
	}
	return 0
}

// fireDue launches every trigger whose fire time has arrived and
// re-arms each for its following occurrence. A fire time lying in the
// past, after a clock jump or a suspended host, fires exactly once;
// missed occurrences are not replayed.
func (e *Engine) fireDue() {
	now := e.now()

	var due []model.Schedule

	e.mu.Lock()
	for {
		head := e.queue.peek()
		if head == nil || head.NextFire.After(now) {
			break
		}
		trig := heap.Pop(&e.queue).(*Trigger)

		// re-read at fire time; the parameters may have changed since
		// the trigger was armed
		sched, err := e.store.GetSchedule(trig.ScheduleID)
		if err != nil || !sched.Active {
			continue
		}
		heap.Push(&e.queue, &Trigger{ScheduleID: sched.ID, NextFire: nextFire(now, sched)})
		due = append(due, sched)
	}
	armed := e.queue.Len()
	e.mu.Unlock()

	e.metrics.TriggersArmed(armed)
	for _, sched := range due {
		log.Info().Str("schedule_id", sched.ID).Str("name", sched.Name).Msg("trigger fired")
		e.launch(sched, false)
	}
}

// RunNow fires one out-of-band run. The schedule's regular trigger is
// neither consumed nor rescheduled.
func (e *Engine) RunNow(id string) error {
	sched, err := e.store.GetSchedule(id)
	if err != nil {
		return err
	}
	if e.runner.InFlight(id) {
		return ErrRunInFlight
	}
	e.launch(sched, true)
	return nil
}

// launch hands one schedule to the runner on its own goroutine so a
// slow copy cannot delay other schedules' fire times.
func (e *Engine) launch(sched model.Schedule, manual bool) {
	e.metrics.RunStarted()
	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		// the run outlives loop shutdown; killing rsync mid-copy is
		// worse than finishing after the loop has stopped
		outcome := e.runner.Run(context.Background(), sched)
		e.finish(sched, outcome, manual)
	}()
}

func (e *Engine) finish(sched model.Schedule, outcome model.RunOutcome, manual bool) {
	e.metrics.RunCompleted(outcome.Status, outcome.Duration())

	if e.runLog != nil {
		if err := e.runLog.Insert(history.NewRecord(sched, outcome, manual)); err != nil {
			log.Error().Err(err).Str("schedule_id", sched.ID).Msg("record run history failed")
		}
	}

	// a skip is visible in the log and history but does not overwrite
	// the schedule's last real run
	if outcome.Status == model.RunSkipped {
		return
	}

	if err := e.store.RecordRun(sched.ID, outcome); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info().Str("schedule_id", sched.ID).Msg("schedule removed during run, outcome discarded")
		} else {
			log.Error().Err(err).Str("schedule_id", sched.ID).Msg("record run failed")
		}
	}

	if e.notifier != nil {
		e.notifier.RunFinished(sched, outcome, manual)
	}
}

// ArmedTrigger is a read-only view of one armed trigger.
type ArmedTrigger struct {
	ScheduleID string    `json:"schedule_id"`
	NextFire   time.Time `json:"next_fire"`
}

// Snapshot lists the armed triggers ordered by fire time.
func (e *Engine) Snapshot() []ArmedTrigger {
	e.mu.Lock()
	out := make([]ArmedTrigger, 0, e.queue.Len())
	for _, t := range e.queue {
		out = append(out, ArmedTrigger{ScheduleID: t.ScheduleID, NextFire: t.NextFire})
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].NextFire.Equal(out[j].NextFire) {
			return out[i].ScheduleID < out[j].ScheduleID
		}
		return out[i].NextFire.Before(out[j].NextFire)
	})
	return out
}

// NextFireFor reports the armed fire time for one schedule.
func (e *Engine) NextFireFor(id string) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.queue {
		if t.ScheduleID == id {
			return t.NextFire, true
		}
	}
	return time.Time{}, false
}

// Armed returns the number of armed triggers.
func (e *Engine) Armed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// WaitRuns blocks until all in-flight runs have finished or ctx
// expires, whichever comes first.
func (e *Engine) WaitRuns(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) poke() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
