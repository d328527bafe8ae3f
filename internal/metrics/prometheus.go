package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lesstask"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	batchDuration *prom.HistogramVec
	batches       *prom.CounterVec
	files         *prom.CounterVec
}

// NewPrometheusRecorder constructs the task metrics and registers them on
// reg. A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Pipeline stage results by outcome",
		}, []string{"stage", "result"}),
		batchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of full compilation batches",
			Buckets:   prom.DefBuckets,
		}, []string{"trigger"}),
		batches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Compilation batches by trigger and outcome",
		}, []string{"trigger", "result"}),
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Compiled source files by outcome",
		}, []string{"result"}),
	}

	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.batchDuration, pr.batches, pr.files)

	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage Stage, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage Stage, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(string(stage), string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBatchDuration(trigger Trigger, d time.Duration) {
	if p == nil {
		return
	}
	p.batchDuration.WithLabelValues(string(trigger)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBatch(trigger Trigger, result ResultLabel) {
	if p == nil {
		return
	}
	p.batches.WithLabelValues(string(trigger), string(result)).Inc()
}

func (p *PrometheusRecorder) AddFiles(result ResultLabel, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.files.WithLabelValues(string(result)).Add(float64(n))
}

// HTTPHandler serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
