package metrics

import "time"

// NewBlackHoleSink creates a metrics sink that discards all metrics
func NewBlackHoleSink() Sink {
	return &blackHoleSink{}
}

type blackHoleSink struct {
}

func (b *blackHoleSink) RoutingDecision(router, shardID string) {
	// do nothing
}

func (b *blackHoleSink) ScatterGather(shards, failed int, elapsed time.Duration) {
	// do nothing
}

func (b *blackHoleSink) ShardQuery(shardID string, success bool, elapsed time.Duration) {
	// do nothing
}

func (b *blackHoleSink) ReplicaFallback(reason string) {
	// do nothing
}
