// Package metrics exposes prometheus collectors for worklist synchronization.
package metrics

import (
	"time"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/domain/model/worklist"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "radiology"

// Collectors records worklist sends and lifecycle transitions. It implements
// commands.TransitionObserver and the worklist adapter's SendRecorder.
type Collectors struct {
	sends        *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
}

// New creates the collectors and registers them with registerer.
func New(registerer prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worklist_sends_total",
				Help:      "Total number of worklist sends by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		sendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "worklist_send_duration_seconds",
				Help:      "Duration of worklist sends in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_transitions_total",
				Help:      "Total number of order lifecycle transitions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	for _, collector := range []prometheus.Collector{c.sends, c.sendDuration, c.transitions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collectors) ObserveSend(op worklist.Operation, outcome worklist.Outcome, elapsed time.Duration) {
	c.sends.WithLabelValues(op.String(), outcome.String()).Inc()
	c.sendDuration.WithLabelValues(op.String()).Observe(elapsed.Seconds())
}

func (c *Collectors) ObserveTransition(op worklist.Operation, outcome commands.Outcome) {
	c.transitions.WithLabelValues(op.String(), outcome.String()).Inc()
}
