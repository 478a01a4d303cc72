package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// PrometheusRecorder implements Recorder on the Prometheus client.
// Registration errors are logged, never propagated.
type PrometheusRecorder struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runsInFlight  prometheus.Gauge
	triggersArmed prometheus.Gauge
}

func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nereus_runs_total",
			Help: "Total number of synchronization runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nereus_run_duration_seconds",
			Help:    "Wall-clock duration of synchronization runs in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nereus_runs_in_flight",
			Help: "Number of synchronization runs currently executing.",
		}),
		triggersArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nereus_triggers_armed",
			Help: "Number of schedules with an armed trigger.",
		}),
	}

	register(reg, r.runsTotal, "nereus_runs_total")
	register(reg, r.runDuration, "nereus_run_duration_seconds")
	register(reg, r.runsInFlight, "nereus_runs_in_flight")
	register(reg, r.triggersArmed, "nereus_triggers_armed")
	return r
}

func register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("metric registration failed")
	}
}

func (r *PrometheusRecorder) RunStarted() {
	r.runsInFlight.Inc()
}

func (r *PrometheusRecorder) RunCompleted(status model.RunStatus, duration time.Duration) {
	r.runsInFlight.Dec()
	r.runsTotal.WithLabelValues(string(status)).Inc()
	if status != model.RunSkipped {
		r.runDuration.Observe(duration.Seconds())
	}
}

func (r *PrometheusRecorder) TriggersArmed(count int) {
	r.triggersArmed.Set(float64(count))
}
