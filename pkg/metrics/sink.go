package metrics

import "time"

// Sink receives the observable events from the routing and scatter-gather
// core. Implement this interface to write to other kinds of telemetry
// systems; the library itself only emits the events.
type Sink interface {
	// RoutingDecision is emitted for every successful resolve.
	RoutingDecision(router, shardID string)

	// ScatterGather is emitted once per scatter-gather operation.
	ScatterGather(shards, failed int, elapsed time.Duration)

	// ShardQuery is emitted for every per-shard query in a scatter-gather
	// operation.
	ShardQuery(shardID string, success bool, elapsed time.Duration)

	// ReplicaFallback is emitted when a read falls back to the primary.
	// Reason is one of no_replicas, all_unhealthy or all_stale.
	ReplicaFallback(reason string)
}

// The list of supported metrics
const (
	PrometheusSink = "prometheus"
	NoSink         = "none"
)

// NewSinkFromString returns a named sink
func NewSinkFromString(name string) Sink {
	switch name {
	case "prometheus":
		return NewPrometheusSink()
	default:
		return NewBlackHoleSink()
	}
}
