// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Graph metrics
	EdgesBuilt     prometheus.Counter
	SyntheticEdges prometheus.Counter
	UnhandledIxs   *prometheus.CounterVec
	EdgeTags       *prometheus.CounterVec

	// Pipeline metrics
	TransactionsTotal *prometheus.CounterVec
	LegsAccepted      *prometheus.CounterVec
	LegsRejected      *prometheus.CounterVec
	PassesPerTx       prometheus.Histogram
	PassCapHits       prometheus.Counter
	ReconstructTime   prometheus.Histogram

	// Worker metrics
	JobsTotal     *prometheus.CounterVec
	WorkersActive prometheus.Gauge

	// Solana metrics
	RPCCallLatency  *prometheus.HistogramVec
	CacheRequests   *prometheus.CounterVec
	WSNotifications prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on reg.
// A nil reg registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "trade_recon"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		EdgesBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "edges_built_total",
			Help:      "Total number of edges emitted by the graph builder",
		}),
		SyntheticEdges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "synthetic_edges_total",
			Help:      "Total number of residual balance edges",
		}),
		UnhandledIxs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "unhandled_instructions_total",
			Help:      "Instructions that only the fallback visitor accepted, by program",
		}, []string{"program"}),
		EdgeTags: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tagging",
			Name:      "edge_tags_total",
			Help:      "Edges by assigned tag",
		}, []string{"tag"}),

		TransactionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "transactions_total",
			Help:      "Transactions processed by outcome",
		}, []string{"status"}),
		LegsAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "legs_accepted_total",
			Help:      "Legs accepted by strategy",
		}, []string{"strategy"}),
		LegsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "legs_rejected_total",
			Help:      "Legs rejected for touching consumed edges, by strategy",
		}, []string{"strategy"}),
		PassesPerTx: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "passes_per_transaction",
			Help:      "Strategy passes run per transaction",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
		}),
		PassCapHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "pass_cap_hits_total",
			Help:      "Transactions that stopped at the pass cap while still progressing",
		}),
		ReconstructTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reconstruct_seconds",
			Help:      "Per-transaction reconstruction latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),

		JobsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Worker jobs by outcome",
		}, []string{"status"}),
		WorkersActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "active",
			Help:      "Workers currently running a job",
		}),

		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Transaction cache lookups by result",
		}, []string{"result"}),
		WSNotifications: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_notifications_total",
			Help:      "Log notifications received from wallet subscriptions",
		}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordEdges records the output of one graph build.
func RecordEdges(total, synthetic int) {
	DefaultMetrics.EdgesBuilt.Add(float64(total))
	DefaultMetrics.SyntheticEdges.Add(float64(synthetic))
}

// RecordUnhandledInstruction counts an instruction no visitor understood.
func RecordUnhandledInstruction(program string) {
	if program == "" {
		program = "unknown"
	}
	DefaultMetrics.UnhandledIxs.WithLabelValues(program).Inc()
}

// RecordTag counts one tagged edge.
func RecordTag(tag string) {
	DefaultMetrics.EdgeTags.WithLabelValues(tag).Inc()
}

// RecordTransaction records a processed transaction with its outcome.
func RecordTransaction(status string, seconds float64) {
	DefaultMetrics.TransactionsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ReconstructTime.Observe(seconds)
}

// RecordLeg records an accepted or rejected leg.
func RecordLeg(strategy string, accepted bool) {
	if accepted {
		DefaultMetrics.LegsAccepted.WithLabelValues(strategy).Inc()
		return
	}
	DefaultMetrics.LegsRejected.WithLabelValues(strategy).Inc()
}

// RecordPasses records how many passes a transaction needed.
func RecordPasses(passes int, capped bool) {
	DefaultMetrics.PassesPerTx.Observe(float64(passes))
	if capped {
		DefaultMetrics.PassCapHits.Inc()
	}
}

// RecordJob records a finished worker job.
func RecordJob(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.JobsTotal.WithLabelValues(status).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordCache records a cache hit or miss.
func RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CacheRequests.WithLabelValues(result).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
