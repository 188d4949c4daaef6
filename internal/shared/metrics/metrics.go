package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_pipeline_runs_total",
		Help: "Document pipeline runs by outcome.",
	}, []string{"outcome"})

	pipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "studyhub_pipeline_duration_seconds",
		Help:    "Document pipeline duration in seconds.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	chunksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_chunks_processed_total",
		Help: "Text chunks sent through generation.",
	})

	generationCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_generation_calls_total",
		Help: "Generation calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	generationRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_generation_retries_total",
		Help: "Generation calls retried after a transient API error.",
	})

	persistenceWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_persistence_partial_failures_total",
		Help: "Sub-collection save failures after the document record was stored.",
	}, []string{"collection"})

	jobsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_worker_jobs_total",
		Help: "Worker job messages by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		pipelineRuns,
		pipelineDuration,
		chunksProcessed,
		generationCalls,
		generationRetries,
		persistenceWarnings,
		jobsReceived,
	)
}

// ObservePipeline records one finished pipeline run.
func ObservePipeline(outcome string, seconds float64) {
	pipelineRuns.WithLabelValues(outcome).Inc()
	if seconds < 0 {
		seconds = 0
	}
	pipelineDuration.Observe(seconds)
}

// IncChunksProcessed counts one chunk through all four generation stages.
func IncChunksProcessed() {
	chunksProcessed.Inc()
}

// IncGenerationCall counts a generation call.
func IncGenerationCall(operation, outcome string) {
	generationCalls.WithLabelValues(operation, outcome).Inc()
}

// IncGenerationRetry counts a retried generation call.
func IncGenerationRetry() {
	generationRetries.Inc()
}

// IncPersistenceWarning counts a non-fatal sub-collection save failure.
func IncPersistenceWarning(collection string) {
	persistenceWarnings.WithLabelValues(collection).Inc()
}

// IncWorkerJob counts a worker message outcome (received, started, completed, failed, discarded).
func IncWorkerJob(result string) {
	jobsReceived.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
