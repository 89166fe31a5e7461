// Package metrics exposes housekeeping progress as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"housekeeper/internal/domain/purge"
)

const namespace = "housekeeper"

// Recorder implements purge.Observer on top of Prometheus collectors.
type Recorder struct {
	rowsTotal        *prometheus.CounterVec
	windowsTotal     *prometheus.CounterVec
	checkpointsTotal *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	lastSuccess      *prometheus.GaugeVec
}

var _ purge.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Rows counted (estimated) or purged (executed) per target",
			},
			[]string{"target", "mode"},
		),
		windowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "windows_total",
				Help:      "Id windows mutated per target",
			},
			[]string{"target"},
		),
		checkpointsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkpoints_total",
				Help:      "Intermediate transaction commits per target",
			},
			[]string{"target"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Housekeeping runs by mode and status",
			},
			[]string{"mode", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of housekeeping runs",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300, 900, 1800, 3600},
			},
			[]string{"mode", "status"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(
		r.rowsTotal,
		r.windowsTotal,
		r.checkpointsTotal,
		r.runsTotal,
		r.runDuration,
		r.lastSuccess,
	)

	return r
}

func (r *Recorder) TargetDone(target purge.TargetID, mode purge.Mode, affected int64) {
	r.rowsTotal.WithLabelValues(string(target), mode.String()).Add(float64(affected))
}

func (r *Recorder) WindowDone(target purge.TargetID, _ int64) {
	r.windowsTotal.WithLabelValues(string(target)).Inc()
}

func (r *Recorder) Checkpointed(target purge.TargetID) {
	r.checkpointsTotal.WithLabelValues(string(target)).Inc()
}

func (r *Recorder) RunDone(mode purge.Mode, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	} else {
		r.lastSuccess.WithLabelValues(mode.String()).SetToCurrentTime()
	}
	r.runsTotal.WithLabelValues(mode.String(), status).Inc()
	r.runDuration.WithLabelValues(mode.String(), status).Observe(elapsed.Seconds())
}
