package notify

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// Notifier turns run outcomes into operator emails.
type Notifier struct {
	mailer Mailer
}

func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// RunFinished emails the outcome of a completed run to the schedule's
// notification address. Schedules without an address are skipped.
// Delivery failure never propagates: a missed email must not affect
// the run it reports on.
func (n *Notifier) RunFinished(sched model.Schedule, outcome model.RunOutcome, manual bool) {
	if sched.Email == "" {
		return
	}

	var subject string
	switch outcome.Status {
	case model.RunSuccess:
		subject = "Sync completed: " + sched.Name
	case model.RunFailure:
		subject = "Sync failed: " + sched.Name
	default:
		return
	}
	if manual {
		subject = "[manual] " + subject
	}

	body, err := renderOutcome(sched, outcome)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", sched.ID).Msg("render notification failed")
		return
	}
	if err := n.mailer.Send(sched.Email, subject, body); err != nil {
		log.Error().Err(err).
			Str("schedule_id", sched.ID).
			Str("to", sched.Email).
			Msg("send notification failed")
		return
	}
	log.Info().Str("schedule_id", sched.ID).Str("to", sched.Email).Msg("notification sent")
}

// SendTest delivers a short probe message so operators can verify their
// mail settings. Unlike post-run notices, the delivery error is
// returned to the caller.
func (n *Notifier) SendTest(to string) error {
	body, err := renderTest(time.Now())
	if err != nil {
		return err
	}
	return n.mailer.Send(to, "[test] Sync notification settings", body)
}
