package metrics

import "github.com/prometheus/client_golang/prometheus"

// Résumé and embedding pipeline metrics.
var (
	ExtractTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_total",
			Help:      "Résumé extraction attempts by winning strategy (none when nothing matched)",
		},
		[]string{"strategy"},
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resume_fetch_total",
			Help:      "Remote résumé fetches by outcome",
		},
		[]string{"result"},
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Candidate embed-and-persist runs",
		},
		[]string{"source", "result"},
	)

	SchedulerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_queue_depth",
			Help:      "Background embedding tasks waiting for a worker",
		},
	)

	RebuildLastOutcome = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rebuild_last_outcome",
			Help:      "Tallies of the most recent batch rebuild",
		},
		[]string{"kind"}, // success / fail / total
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers extraction, fetch, scheduler and rebuild metrics.
// Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractTotal)
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(SchedulerQueueDepth)
	prometheus.MustRegister(RebuildLastOutcome)
	pipelineMetricsRegistered = true
}
