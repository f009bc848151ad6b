// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the engine's Prometheus metrics: oracle traffic,
// routing decisions, worker invocations, alignment output, and retrieval
// cache effectiveness. All record methods are nil-safe so callers can
// run without metrics wired.
type Collector struct {
	oracleRequestsTotal   *prometheus.CounterVec
	oracleRequestDuration *prometheus.HistogramVec
	oracleTokensUsed      *prometheus.CounterVec

	routingDecisionsTotal   *prometheus.CounterVec
	workerInvocationsTotal  *prometheus.CounterVec
	workerInvocationSeconds *prometheus.HistogramVec
	turnSteps               prometheus.Histogram

	alignmentRecordsTotal    *prometheus.CounterVec
	alignmentConceptsTotal   *prometheus.CounterVec
	alignmentConceptDuration prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	logger *zap.Logger
}

// NewCollector registers the engine metrics on the given registerer
// (nil registers on the default one).
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{logger: logger.With(zap.String("component", "metrics"))}

	c.oracleRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Total number of reasoning-oracle requests",
		},
		[]string{"provider", "status"},
	)
	c.oracleRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Reasoning-oracle request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	c.oracleTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_tokens_used_total",
			Help:      "Total number of oracle tokens used",
		},
		[]string{"provider", "type"}, // type: prompt, completion
	)

	c.routingDecisionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_decisions_total",
			Help:      "Total number of supervisor routing decisions",
		},
		[]string{"next"},
	)
	c.workerInvocationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_invocations_total",
			Help:      "Total number of worker invocations",
		},
		[]string{"worker", "status"},
	)
	c.workerInvocationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_invocation_duration_seconds",
			Help:      "Worker invocation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)
	c.turnSteps = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_steps",
			Help:      "Supervisor decisions taken per orchestration turn",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	c.alignmentRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_records_total",
			Help:      "Total number of emitted alignment records",
		},
		[]string{"relation"},
	)
	c.alignmentConceptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_concepts_total",
			Help:      "Total number of aligned source concepts",
		},
		[]string{"status"}, // status: ok, failed, empty
	)
	c.alignmentConceptDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "alignment_concept_duration_seconds",
			Help:      "Per-concept alignment duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.cacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_cache_hits_total",
			Help:      "Total number of retrieval cache hits",
		},
	)
	c.cacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_cache_misses_total",
			Help:      "Total number of retrieval cache misses",
		},
	)

	return c
}

// RecordOracleRequest records one oracle completion call.
func (c *Collector) RecordOracleRequest(provider, status string, duration time.Duration, promptTokens, completionTokens int) {
	if c == nil {
		return
	}
	c.oracleRequestsTotal.WithLabelValues(provider, status).Inc()
	c.oracleRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if promptTokens > 0 {
		c.oracleTokensUsed.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.oracleTokensUsed.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// RecordRoutingDecision records one supervisor decision.
func (c *Collector) RecordRoutingDecision(next string) {
	if c == nil {
		return
	}
	c.routingDecisionsTotal.WithLabelValues(next).Inc()
}

// RecordWorkerInvocation records one worker invocation.
func (c *Collector) RecordWorkerInvocation(worker, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.workerInvocationsTotal.WithLabelValues(worker, status).Inc()
	c.workerInvocationSeconds.WithLabelValues(worker).Observe(duration.Seconds())
}

// RecordTurnSteps records how many supervisor decisions one turn took.
func (c *Collector) RecordTurnSteps(steps int) {
	if c == nil {
		return
	}
	c.turnSteps.Observe(float64(steps))
}

// RecordAlignmentConcept records the outcome of aligning one concept,
// with emitted record counts keyed by relation.
func (c *Collector) RecordAlignmentConcept(status string, duration time.Duration, records map[string]int) {
	if c == nil {
		return
	}
	c.alignmentConceptsTotal.WithLabelValues(status).Inc()
	c.alignmentConceptDuration.Observe(duration.Seconds())
	for relation, n := range records {
		c.alignmentRecordsTotal.WithLabelValues(relation).Add(float64(n))
	}
}

// RecordCacheHit records a retrieval cache hit.
func (c *Collector) RecordCacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// RecordCacheMiss records a retrieval cache miss.
func (c *Collector) RecordCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}
