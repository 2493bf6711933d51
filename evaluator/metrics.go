package evaluator

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "abse"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Baseline computed by the latest update.
	Baseline metrics.Gauge
	// Number of score vectors held in the window.
	WindowSize metrics.Gauge
	// Current round counter.
	Round metrics.Gauge
	// Number of score vectors evicted into the reference vector.
	Evictions metrics.Counter
	// Trust verdicts, labelled by "trusted".
	Verdicts metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}

	return &Metrics{
		Baseline: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "baseline",
			Help:      "Baseline computed by the latest update.",
		}, labels).With(labelsAndValues...),
		WindowSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "window_size",
			Help:      "Number of score vectors held in the window.",
		}, labels).With(labelsAndValues...),
		Round: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "round",
			Help:      "Current round counter.",
		}, labels).With(labelsAndValues...),
		Evictions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "evictions",
			Help:      "Number of score vectors evicted into the reference vector.",
		}, labels).With(labelsAndValues...),
		Verdicts: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "verdicts",
			Help:      "Trust verdicts, labelled by outcome.",
		}, append(labels, "trusted")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Baseline:   discard.NewGauge(),
		WindowSize: discard.NewGauge(),
		Round:      discard.NewGauge(),
		Evictions:  discard.NewCounter(),
		Verdicts:   discard.NewCounter(),
	}
}
