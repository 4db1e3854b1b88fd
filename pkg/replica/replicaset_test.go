package replica

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/shard"
)

func TestSetPicksHealthyReplica(t *testing.T) {
	assert := require.New(t)

	tracker := NewHealthTracker(time.Minute)
	set := NewSet("primary", []string{"r1", "r2"}, tracker, NewRoundRobin(), DefaultParameters(), nil)

	tracker.MarkUnhealthy("r1")
	for i := 0; i < 10; i++ {
		id, err := set.Pick()
		assert.NoError(err)
		assert.Equal("r2", id)
	}
}

func TestSetFallbackNoReplicas(t *testing.T) {
	assert := require.New(t)

	tracker := NewHealthTracker(time.Minute)
	set := NewSet("primary", nil, tracker, NewRoundRobin(), DefaultParameters(), nil)

	id, err := set.Pick()
	assert.NoError(err)
	assert.Equal("primary", id)

	params := DefaultParameters()
	params.FallbackToPrimaryWhenNoReplicas = false
	strict := NewSet("primary", nil, tracker, NewRoundRobin(), params, nil)
	_, err = strict.Pick()
	assert.True(shard.IsCode(err, shard.CodeNoHealthyReplica))
}

func TestSetFallbackAllUnhealthy(t *testing.T) {
	assert := require.New(t)

	tracker := NewHealthTracker(time.Minute)
	tracker.MarkUnhealthy("r1")
	tracker.MarkUnhealthy("r2")

	set := NewSet("primary", []string{"r1", "r2"}, tracker, NewRoundRobin(), DefaultParameters(), nil)
	id, err := set.Pick()
	assert.NoError(err)
	assert.Equal("primary", id)

	params := DefaultParameters()
	params.FallbackToPrimaryWhenNoReplicas = false
	strict := NewSet("primary", []string{"r1", "r2"}, tracker, NewRoundRobin(), params, nil)
	_, err = strict.Pick()
	assert.True(shard.IsCode(err, shard.CodeNoHealthyReplica))
}

func TestSetStaleness(t *testing.T) {
	assert := require.New(t)

	tracker := NewHealthTracker(time.Minute)
	tracker.ReportLag("r1", 10*time.Second)
	tracker.ReportLag("r2", 20*time.Second)

	params := DefaultParameters()
	params.StalenessThreshold = 5 * time.Second
	params.FallbackToPrimaryWhenStale = true
	set := NewSet("primary", []string{"r1", "r2"}, tracker, NewRoundRobin(), params, nil)

	// All replicas are too far behind: stale fallback.
	id, err := set.Pick()
	assert.NoError(err)
	assert.Equal("primary", id)

	// Stale fallback disabled: typed error instead.
	params.FallbackToPrimaryWhenStale = false
	strict := NewSet("primary", []string{"r1", "r2"}, tracker, NewRoundRobin(), params, nil)
	_, err = strict.Pick()
	assert.True(shard.IsCode(err, shard.CodeNoHealthyReplica))

	// A per-query staleness bound overrides the configured one.
	id, err = strict.PickWithin(15 * time.Second)
	assert.NoError(err)
	assert.Equal("r1", id)

	// Lag recovers; normal selection resumes.
	tracker.ReportLag("r1", time.Second)
	id, err = set.Pick()
	assert.NoError(err)
	assert.Equal("r1", id)
}

type recordingSink struct {
	reasons []string
}

func (r *recordingSink) RoutingDecision(router, shardID string) {}

func (r *recordingSink) ScatterGather(shards, failed int, elapsed time.Duration) {}

func (r *recordingSink) ShardQuery(shardID string, success bool, d time.Duration) {}

func (r *recordingSink) ReplicaFallback(reason string) {
	r.reasons = append(r.reasons, reason)
}

func TestSetFallbackReasons(t *testing.T) {
	assert := require.New(t)

	sink := &recordingSink{}
	tracker := NewHealthTracker(time.Minute)

	params := DefaultParameters()
	params.StalenessThreshold = time.Second
	params.FallbackToPrimaryWhenStale = true

	// no_replicas
	set := NewSet("primary", nil, tracker, NewRoundRobin(), params, sink)
	_, err := set.Pick()
	assert.NoError(err)

	// all_unhealthy
	tracker.MarkUnhealthy("r1")
	set = NewSet("primary", []string{"r1"}, tracker, NewRoundRobin(), params, sink)
	_, err = set.Pick()
	assert.NoError(err)

	// all_stale
	tracker.MarkHealthy("r1")
	tracker.ReportLag("r1", time.Minute)
	_, err = set.Pick()
	assert.NoError(err)

	assert.Equal([]string{FallbackNoReplicas, FallbackAllUnhealthy, FallbackAllStale}, sink.reasons)
}
