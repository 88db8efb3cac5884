package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the recorder the search reports trial and combination outcomes to
type Metrics interface {
	ObserveTrial(status string, elapsed time.Duration)
	ObserveCombo(outcome string)
}

var _ Metrics = (*Service)(nil)

// Service holds the Prometheus collectors of the scheduler
type Service struct {
	Trials        *prometheus.CounterVec
	TrialDuration prometheus.Histogram
	Combos        *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewService creates the collectors on a fresh registry
func NewService() *Service {
	reg := prometheus.NewRegistry()
	return NewServiceWith(reg, reg)
}

// NewServiceWith creates the collectors and registers them on reg.
// gatherer is used by WriteTextfile and may be nil when the caller gathers itself.
func NewServiceWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Service {
	s := &Service{
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixer_trials_total",
			Help: "Solver trials run, by final status.",
		}, []string{"status"}),
		TrialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixer_trial_duration_seconds",
			Help:    "Wall-clock duration of a single solver trial.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		Combos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixer_combos_total",
			Help: "Player-count combinations processed by a sweep, by outcome.",
		}, []string{"outcome"}),
		gatherer: gatherer,
	}

	reg.MustRegister(s.Trials, s.TrialDuration, s.Combos)

	return s
}

func (s *Service) ObserveTrial(status string, elapsed time.Duration) {
	s.Trials.WithLabelValues(status).Inc()
	s.TrialDuration.Observe(elapsed.Seconds())
}

func (s *Service) ObserveCombo(outcome string) {
	s.Combos.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes every gathered metric to path in the text exposition format,
// suitable for the node exporter's textfile collector
func (s *Service) WriteTextfile(path string) error {
	if s.gatherer == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, s.gatherer)
}
