// Package metrics exposes Prometheus collectors for the sign-in daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seelevollerei/skland-signin/skland"
)

// Recorder implements skland.Recorder on Prometheus collectors.
type Recorder struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	results     *prometheus.CounterVec
	retries     prometheus.Counter
}

var _ skland.Recorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skland_signin_runs_total",
			Help: "Full sign-in runs by terminal state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skland_signin_run_duration_seconds",
			Help:    "Wall time of one full sign-in run.",
			Buckets: prometheus.DefBuckets,
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skland_signin_results_total",
			Help: "Per-role sign-in results by game and outcome.",
		}, []string{"game", "outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skland_signin_http_retries_total",
			Help: "HTTP attempts beyond the first, across all requests.",
		}),
	}
	reg.MustRegister(r.runs, r.runDuration, r.results, r.retries)
	return r
}

func (r *Recorder) RunObserved(d time.Duration, err error) {
	state := "ok"
	if err != nil {
		state = "error"
	}
	r.runs.WithLabelValues(state).Inc()
	r.runDuration.Observe(d.Seconds())
}

func (r *Recorder) ResultObserved(game skland.Game, outcome skland.OutcomeKind) {
	label := "signed"
	switch outcome {
	case skland.OutcomeAlreadySigned:
		label = "already_signed"
	case skland.OutcomeFailed:
		label = "failed"
	}
	r.results.WithLabelValues(string(game), label).Inc()
}

func (r *Recorder) RetryObserved() {
	r.retries.Inc()
}
