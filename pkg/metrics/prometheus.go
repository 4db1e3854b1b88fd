package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var oneTimeRegister sync.Once

type prometheusSink struct {
	routingDecisions *prometheus.CounterVec
	scatterDuration  *prometheus.HistogramVec
	shardQueries     *prometheus.CounterVec
	replicaFallbacks *prometheus.CounterVec
}

var promMetrics *prometheusSink

// NewPrometheusSink creates a metrics sink for Prometheus. All sinks created
// by this function will write to the same sinks.
func NewPrometheusSink() Sink {
	// This registers the metrics for the first time but not for subsequent
	// calls. Since this is a one-time operation it will also work for unit
	// tests but the registration might be stale or incorrect.
	// Registering via a simple init() function also works but it pollutes
	// the package namespace with symbols.
	oneTimeRegister.Do(func() {
		promMetrics = &prometheusSink{
			// routingDecisions counts successful resolves per router type
			// and resolved shard.
			routingDecisions: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sf",
					Subsystem: "routing",
					Name:      "decisions",
					Help:      "Routing decisions",
				},
				[]string{"router", "shard"}),
			// scatterDuration tracks the duration of whole scatter-gather
			// operations, labelled with the failed shard count.
			scatterDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "sf",
					Subsystem: "scatter",
					Name:      "duration_seconds",
					Help:      "Scatter-gather operation duration",
				},
				[]string{"failed"}),
			// shardQueries counts per-shard queries by outcome.
			shardQueries: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sf",
					Subsystem: "scatter",
					Name:      "shard_queries",
					Help:      "Per-shard queries in scatter-gather operations",
				},
				[]string{"shard", "success"}),
			// replicaFallbacks counts fallback-to-primary events by reason.
			replicaFallbacks: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "sf",
					Subsystem: "replica",
					Name:      "primary_fallbacks",
					Help:      "Reads that fell back to the primary",
				},
				[]string{"reason"}),
		}
		prometheus.MustRegister(promMetrics.routingDecisions)
		prometheus.MustRegister(promMetrics.scatterDuration)
		prometheus.MustRegister(promMetrics.shardQueries)
		prometheus.MustRegister(promMetrics.replicaFallbacks)
	})
	return promMetrics
}

func (p *prometheusSink) RoutingDecision(router, shardID string) {
	p.routingDecisions.With(prometheus.Labels{
		"router": router,
		"shard":  shardID,
	}).Inc()
}

func (p *prometheusSink) ScatterGather(shards, failed int, elapsed time.Duration) {
	p.scatterDuration.With(prometheus.Labels{
		"failed": strconv.Itoa(failed),
	}).Observe(elapsed.Seconds())
}

func (p *prometheusSink) ShardQuery(shardID string, success bool, elapsed time.Duration) {
	p.shardQueries.With(prometheus.Labels{
		"shard":   shardID,
		"success": strconv.FormatBool(success),
	}).Inc()
}

func (p *prometheusSink) ReplicaFallback(reason string) {
	p.replicaFallbacks.With(prometheus.Labels{
		"reason": reason,
	}).Inc()
}
