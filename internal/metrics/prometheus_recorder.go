package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	generated   *prom.CounterVec
	skipped     *prom.CounterVec
	failures    *prom.CounterVec
	runDuration prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generated: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportgen",
			Name:      "files_generated_total",
			Help:      "Report files generated, by report",
		}, []string{"report"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportgen",
			Name:      "windows_skipped_total",
			Help:      "Output windows skipped, by report and reason",
		}, []string{"report", "reason"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportgen",
			Name:      "window_failures_total",
			Help:      "Per-window failures, by report and pipeline stage",
		}, []string{"report", "stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "reportgen",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.generated, pr.skipped, pr.failures, pr.runDuration)
	return pr
}

func (p *PrometheusRecorder) IncGenerated(report string) {
	if p == nil || p.generated == nil {
		return
	}
	p.generated.WithLabelValues(report).Inc()
}

func (p *PrometheusRecorder) IncSkipped(report, reason string) {
	if p == nil || p.skipped == nil {
		return
	}
	p.skipped.WithLabelValues(report, reason).Inc()
}

func (p *PrometheusRecorder) IncFailure(report, stage string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(report, stage).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}
