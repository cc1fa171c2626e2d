// Package metrics exposes Prometheus metrics for trip searches, transfer
// index builds and graph generations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeTruncated = "truncated"
	OutcomeError     = "error"
)

// Collector owns a private registry. A nil *Collector is valid and records
// nothing.
type Collector struct {
	reg *prometheus.Registry

	Searches       *prometheus.CounterVec // outcome label
	SearchDuration prometheus.Histogram
	StatesExpanded prometheus.Histogram

	IndexBuildDuration prometheus.Histogram
	TransfersIndexed   prometheus.Gauge
	TransfersDropped   prometheus.Gauge

	Generation       prometheus.Gauge
	RealtimeUpdates  prometheus.Counter
	RealtimeFailures prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsearch_searches_total",
			Help: "Trip searches by outcome.",
		}, []string{"outcome"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsearch_search_duration_seconds",
			Help:    "Wall time of one shortest path tree search.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		StatesExpanded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsearch_states_expanded",
			Help:    "States dequeued per search.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 10),
		}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsearch_transfer_index_build_seconds",
			Help:    "Duration of constrained transfer index generation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		TransfersIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripsearch_constrained_transfers",
			Help: "Constrained transfers in the current index.",
		}),
		TransfersDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripsearch_constrained_transfers_dropped",
			Help: "Constrained transfers dropped while building the current index.",
		}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripsearch_graph_generation",
			Help: "Id of the graph generation serving searches.",
		}),
		RealtimeUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsearch_realtime_trip_updates_total",
			Help: "Realtime trip updates applied.",
		}),
		RealtimeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsearch_realtime_update_errors_total",
			Help: "Realtime updates rejected by the transit model.",
		}),
	}

	reg.MustRegister(
		c.Searches, c.SearchDuration, c.StatesExpanded,
		c.IndexBuildDuration, c.TransfersIndexed, c.TransfersDropped,
		c.Generation, c.RealtimeUpdates, c.RealtimeFailures,
	)
	return c
}

// ObserveSearch records one finished search
func (c *Collector) ObserveSearch(outcome string, d time.Duration, expanded int) {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(outcome).Inc()
	c.SearchDuration.Observe(d.Seconds())
	c.StatesExpanded.Observe(float64(expanded))
}

// ObserveSearchError counts a search that failed before it ran
func (c *Collector) ObserveSearchError() {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(OutcomeError).Inc()
}

// ObserveIndexBuild records a transfer index build
func (c *Collector) ObserveIndexBuild(d time.Duration, indexed, dropped int) {
	if c == nil {
		return
	}
	c.IndexBuildDuration.Observe(d.Seconds())
	c.TransfersIndexed.Set(float64(indexed))
	c.TransfersDropped.Set(float64(dropped))
}

// SetGeneration records the generation now serving searches
func (c *Collector) SetGeneration(id uint64) {
	if c == nil {
		return
	}
	c.Generation.Set(float64(id))
}

// ObserveRealtime records applied updates and rejected ones
func (c *Collector) ObserveRealtime(applied, failed int) {
	if c == nil {
		return
	}
	c.RealtimeUpdates.Add(float64(applied))
	c.RealtimeFailures.Add(float64(failed))
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
