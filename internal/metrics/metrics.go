// Package metrics exposes Prometheus collectors for mining runs.
//
// A Metrics value owns a private registry so that several miners (or tests)
// can coexist in one process without duplicate-registration panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

const namespace = "ruleminer"

// Metrics records search progress and run timings.
type Metrics struct {
	registry      *prometheus.Registry
	candidates    *prometheus.CounterVec
	survivors     *prometheus.CounterVec
	unknownColumn prometheus.Counter
	runDuration   *prometheus.HistogramVec
}

var _ miner.Observer = (*Metrics)(nil)

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate itemsets evaluated, by itemset size.",
		}, []string{"level"}),
		survivors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "survivors_total",
			Help:      "Candidate itemsets that met the support threshold, by itemset size.",
		}, []string{"level"}),
		unknownColumn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_column_total",
			Help:      "Support lookups that referenced a column missing from the dataset.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of mining operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.candidates,
		m.survivors,
		m.unknownColumn,
		m.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLevel implements miner.Observer.
func (m *Metrics) ObserveLevel(size, candidates, survivors int) {
	level := strconv.Itoa(size)
	m.candidates.WithLabelValues(level).Add(float64(candidates))
	m.survivors.WithLabelValues(level).Add(float64(survivors))
}

// ObserveUnknownColumn implements miner.Observer.
func (m *Metrics) ObserveUnknownColumn(miner.Itemset) {
	m.unknownColumn.Inc()
}

// ObserveRun records how long operation took.
func (m *Metrics) ObserveRun(operation string, elapsed time.Duration) {
	m.runDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Fanout forwards observer callbacks to every non-nil observer.
type Fanout []miner.Observer

var _ miner.Observer = Fanout(nil)

// ObserveLevel implements miner.Observer.
func (f Fanout) ObserveLevel(size, candidates, survivors int) {
	for _, o := range f {
		if o != nil {
			o.ObserveLevel(size, candidates, survivors)
		}
	}
}

// ObserveUnknownColumn implements miner.Observer.
func (f Fanout) ObserveUnknownColumn(items miner.Itemset) {
	for _, o := range f {
		if o != nil {
			o.ObserveUnknownColumn(items)
		}
	}
}
