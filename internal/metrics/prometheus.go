package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exposes a Collector's statistics to a Prometheus registry.
type PrometheusCollector struct {
	source *Collector

	uptime   *prometheus.Desc
	count    *prometheus.Desc
	seconds  *prometheus.Desc
	failures *prometheus.Desc
	tokens   *prometheus.Desc
}

// NewPrometheusCollector wraps source. Values are read at scrape time.
func NewPrometheusCollector(source *Collector) *PrometheusCollector {
	return &PrometheusCollector{
		source: source,
		uptime: prometheus.NewDesc(
			"flirtassist_uptime_seconds",
			"Seconds since the collector was created.",
			nil, nil,
		),
		count: prometheus.NewDesc(
			"flirtassist_operations_total",
			"Completed operations by name.",
			[]string{"op"}, nil,
		),
		seconds: prometheus.NewDesc(
			"flirtassist_operation_seconds_total",
			"Total time spent in completed operations.",
			[]string{"op"}, nil,
		),
		failures: prometheus.NewDesc(
			"flirtassist_operation_failures_total",
			"Failed operations by name.",
			[]string{"op"}, nil,
		),
		tokens: prometheus.NewDesc(
			"flirtassist_llm_tokens_total",
			"LLM tokens by direction.",
			[]string{"op", "direction"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.uptime
	ch <- p.count
	ch <- p.seconds
	ch <- p.failures
	ch <- p.tokens
}

// Collect implements prometheus.Collector.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	snap := p.source.Snapshot()

	ch <- prometheus.MustNewConstMetric(p.uptime, prometheus.GaugeValue, snap.UptimeSeconds)

	for _, op := range Operations {
		s := snap.Op(op)
		if s == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(p.count, prometheus.CounterValue, float64(s.Count), op)
		ch <- prometheus.MustNewConstMetric(p.seconds, prometheus.CounterValue, float64(s.TotalTimeMs)/1000, op)
		if s.TotalInputTokens != nil {
			ch <- prometheus.MustNewConstMetric(p.tokens, prometheus.CounterValue, float64(*s.TotalInputTokens), op, "input")
		}
		if s.TotalOutputTokens != nil {
			ch <- prometheus.MustNewConstMetric(p.tokens, prometheus.CounterValue, float64(*s.TotalOutputTokens), op, "output")
		}
	}

	for op, n := range snap.Failures {
		ch <- prometheus.MustNewConstMetric(p.failures, prometheus.CounterValue, float64(n), op)
	}
}
