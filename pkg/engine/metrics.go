package engine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the parse counters. A nil *Metrics records nothing.
type Metrics struct {
	parses   *prometheus.CounterVec // outcome: success, failure
	duration prometheus.Histogram   // whole parse, read to publish
	records  *prometheus.GaugeVec   // target: files, components
}

// NewMetrics creates the parse metrics and registers them with registerer.
// Collectors that are already registered are reused, so several engines can
// share one registry.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		return nil, nil
	}

	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partsbin",
			Name:      "parse_total",
			Help:      "Total number of parse runs by outcome",
		}, []string{"outcome"}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "partsbin",
			Name:      "parse_duration_seconds",
			Help:      "Parse duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "partsbin",
			Name:      "records",
			Help:      "Records in the last published collection per target",
		}, []string{"target"}),
	}

	var err error
	if m.parses, err = register(registerer, m.parses); err != nil {
		return nil, err
	}
	if m.duration, err = register(registerer, m.duration); err != nil {
		return nil, err
	}
	if m.records, err = register(registerer, m.records); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (m *Metrics) recordParse(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.parses.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) recordPublish(target Target, count int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(target)).Set(float64(count))
}
