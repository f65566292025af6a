package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter wraps a Sink and exposes its GetStats snapshot as
// Prometheus gauges, registered eagerly so scrapes never race a first
// Record the way aponysus-recourse's PrometheusObserver registers its
// vectors up front in NewPrometheusObserver.
type PrometheusExporter struct {
	sink *Sink

	hedgeRate           prometheus.Gauge
	hedgeWinRate        prometheus.Gauge
	hedgeEffectiveness  prometheus.Gauge
	costOverheadPercent prometheus.Gauge
	throughput          prometheus.Gauge
	latency             *prometheus.GaugeVec
}

// NewPrometheusExporter returns a PrometheusExporter for sink, registering
// its collectors with reg. A nil reg registers with
// prometheus.DefaultRegisterer.
func NewPrometheusExporter(sink *Sink, reg prometheus.Registerer) *PrometheusExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e := &PrometheusExporter{
		sink: sink,
		hedgeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hedge_request_hedge_rate",
			Help: "Fraction of requests that fired at least one backup.",
		}),
		hedgeWinRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hedge_request_hedge_win_rate",
			Help: "Fraction of hedged requests won by a backup.",
		}),
		hedgeEffectiveness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hedge_request_hedge_effectiveness",
			Help: "Fraction of all requests won by a backup.",
		}),
		costOverheadPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hedge_request_cost_overhead_percent",
			Help: "Extra attempts issued, as a percentage of total requests.",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hedge_request_throughput_per_second",
			Help: "Requests recorded per second since the sink was opened or last reset.",
		}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hedge_request_latency_seconds",
			Help: "Latency percentiles over the rolling sample window.",
		}, []string{"quantile"}),
	}

	reg.MustRegister(e.hedgeRate, e.hedgeWinRate, e.hedgeEffectiveness, e.costOverheadPercent, e.throughput, e.latency)
	return e
}

// Collect refreshes every gauge from the wrapped Sink's current stats. Call
// it before a scrape, or on a ticker; it does not implement
// prometheus.Collector itself so that a caller controls refresh cadence
// explicitly rather than recomputing percentiles on every scrape.
func (e *PrometheusExporter) Collect() {
	stats, ok := e.sink.GetStats()
	if !ok {
		return
	}
	e.hedgeRate.Set(stats.HedgeRate)
	e.hedgeWinRate.Set(stats.HedgeWinRate)
	e.hedgeEffectiveness.Set(stats.HedgeEffectiveness)
	e.costOverheadPercent.Set(stats.CostOverheadPercent)
	e.throughput.Set(stats.ThroughputPerSec)
	e.latency.WithLabelValues("p50").Set(stats.P50.Seconds())
	e.latency.WithLabelValues("p90").Set(stats.P90.Seconds())
	e.latency.WithLabelValues("p95").Set(stats.P95.Seconds())
	e.latency.WithLabelValues("p99").Set(stats.P99.Seconds())
	e.latency.WithLabelValues("p999").Set(stats.P999.Seconds())
}
