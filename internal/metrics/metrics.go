package metrics

import (
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// Recorder collects scheduler metrics. All methods are fire-and-forget:
// implementations must not block or propagate errors.
type Recorder interface {
	RunStarted()
	RunCompleted(status model.RunStatus, duration time.Duration)
	TriggersArmed(n int)
}

// Noop is the Recorder used when metrics are disabled, so callers
// never need a nil check.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) RunStarted()                                          {}
func (n *Noop) RunCompleted(status model.RunStatus, d time.Duration) {}
func (n *Noop) TriggersArmed(count int)                              {}
