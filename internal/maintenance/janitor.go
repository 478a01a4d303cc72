// Package maintenance hosts the background housekeeping that keeps
// long-lived state from growing without bound.
package maintenance

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const defaultRetention = 90 * 24 * time.Hour

// Pruner deletes run history older than the cutoff and reports how
// many records were removed.
type Pruner interface {
	Prune(cutoff time.Time) (int64, error)
}

// Janitor prunes old run history on a daily cron beat.
type Janitor struct {
	cronEngine *cron.Cron
	pruner     Pruner
	retention  time.Duration
	schedule   string
}

func NewJanitor(pruner Pruner, retention time.Duration) *Janitor {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Janitor{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		pruner:     pruner,
		retention:  retention,
		schedule:   "@daily",
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cronEngine.AddFunc(j.schedule, j.prune); err != nil {
		return err
	}
	j.cronEngine.Start()
	log.Info().Str("schedule", j.schedule).Dur("retention", j.retention).Msg("history janitor started")
	return nil
}

// Stop halts the cron beat and waits for an in-progress prune to
// finish.
func (j *Janitor) Stop() {
	ctx := j.cronEngine.Stop()
	<-ctx.Done()
}

func (j *Janitor) prune() {
	cutoff := time.Now().Add(-j.retention)
	removed, err := j.pruner.Prune(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("history prune failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("old run history pruned")
	}
}
