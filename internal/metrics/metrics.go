// Package metrics collects feed fetch metrics for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics contract used by the feed store.
type Recorder interface {
	RecordFetchSuccess()
	RecordFetchFailure(reason string)
	RecordParseFailure()
	RecordSharedFetch()
	RecordFetchLatency(d time.Duration)
}

// Collector records fetch metrics on a Prometheus registry.
type Collector struct {
	fetchSuccess prometheus.Counter
	fetchFail    *prometheus.CounterVec
	parseFail    prometheus.Counter
	sharedFetch  prometheus.Counter
	fetchLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecast_feed_fetch_success_total",
			Help: "Number of feeds fetched and parsed successfully.",
		}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_feed_fetch_fail_total",
			Help: "Number of failed feed fetches by reason.",
		}, []string{"reason"}),
		parseFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecast_feed_parse_fail_total",
			Help: "Number of feed bodies that could not be parsed.",
		}),
		sharedFetch: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecast_feed_fetch_shared_total",
			Help: "Number of fetch calls that joined an in-flight fetch.",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavecast_feed_fetch_latency_seconds",
			Help:    "Feed fetch and parse latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.parseFail,
		c.sharedFetch,
		c.fetchLatency,
	)

	return c
}

// RecordFetchSuccess records a successful fetch.
func (c *Collector) RecordFetchSuccess() {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure records a failed fetch with its reason.
func (c *Collector) RecordFetchFailure(reason string) {
	c.fetchFail.WithLabelValues(reason).Inc()
}

// RecordParseFailure records a feed body that failed to parse.
func (c *Collector) RecordParseFailure() {
	c.parseFail.Inc()
}

// RecordSharedFetch records a caller that joined an in-flight fetch.
func (c *Collector) RecordSharedFetch() {
	c.sharedFetch.Inc()
}

// RecordFetchLatency records the duration of one fetch operation.
func (c *Collector) RecordFetchLatency(d time.Duration) {
	c.fetchLatency.Observe(d.Seconds())
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards every metric.
type Nop struct{}

func (Nop) RecordFetchSuccess()                {}
func (Nop) RecordFetchFailure(string)          {}
func (Nop) RecordParseFailure()                {}
func (Nop) RecordSharedFetch()                 {}
func (Nop) RecordFetchLatency(_ time.Duration) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
