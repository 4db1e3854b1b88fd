package replica

//
//Copyright 2019 Telenor Digital AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lab5e/shardfunk/pkg/metrics"
	"github.com/lab5e/shardfunk/pkg/shard"
)

// Fallback reasons reported on the metrics sink when a read goes to the
// primary instead of a replica.
const (
	FallbackNoReplicas   = "no_replicas"
	FallbackAllUnhealthy = "all_unhealthy"
	FallbackAllStale     = "all_stale"
)

// Parameters configures replica selection for a shard.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type Parameters struct {
	RecoveryDelay                   time.Duration `kong:"help='Delay before an unhealthy replica is reconsidered',default='30s'"`
	StalenessThreshold              time.Duration `kong:"help='Max replication lag for reads (0 = no limit)',default='0'"`
	FallbackToPrimaryWhenNoReplicas bool          `kong:"help='Read from the primary when no replica is healthy',default='true'"`
	FallbackToPrimaryWhenStale      bool          `kong:"help='Read from the primary when all replicas are stale',default='false'"`
}

// DefaultParameters returns the default replica parameters.
func DefaultParameters() Parameters {
	return Parameters{
		RecoveryDelay:                   30 * time.Second,
		FallbackToPrimaryWhenNoReplicas: true,
	}
}

// Set is the read-replica set for one shard: the primary connection
// target, the replica candidates, a health tracker and a selection
// strategy. Pick runs health and staleness filtering before the strategy
// and applies the fallback-to-primary policy when nothing is left.
type Set struct {
	primary  string
	replicas []string
	tracker  *HealthTracker
	selector Selector
	params   Parameters
	sink     metrics.Sink
}

// NewSet creates a replica set. The tracker is shared infrastructure
// injected by the caller so several sets (and the call sites reporting
// health) can see the same state. A nil sink discards the fallback events.
func NewSet(primary string, replicas []string, tracker *HealthTracker, selector Selector, params Parameters, sink metrics.Sink) *Set {
	if sink == nil {
		sink = metrics.NewBlackHoleSink()
	}
	return &Set{
		primary:  primary,
		replicas: replicas,
		tracker:  tracker,
		selector: selector,
		params:   params,
		sink:     sink,
	}
}

// Pick selects a replica using the configured staleness threshold.
func (s *Set) Pick() (string, error) {
	return s.pick(s.params.StalenessThreshold)
}

// PickWithin selects a replica with a per-query staleness bound that
// overrides the configured threshold.
func (s *Set) PickWithin(maxLag time.Duration) (string, error) {
	return s.pick(maxLag)
}

func (s *Set) pick(maxLag time.Duration) (string, error) {
	if len(s.replicas) == 0 {
		return s.fallback(FallbackNoReplicas, s.params.FallbackToPrimaryWhenNoReplicas)
	}
	healthy := s.tracker.Healthy(s.replicas)
	if len(healthy) == 0 {
		return s.fallback(FallbackAllUnhealthy, s.params.FallbackToPrimaryWhenNoReplicas)
	}
	fresh := s.tracker.Fresh(healthy, maxLag)
	if len(fresh) == 0 {
		return s.fallback(FallbackAllStale, s.params.FallbackToPrimaryWhenStale)
	}
	return s.selector.Select(fresh)
}

func (s *Set) fallback(reason string, allowed bool) (string, error) {
	if !allowed {
		return "", shard.NewError(shard.CodeNoHealthyReplica, "no eligible replica (%s) and primary fallback is disabled", reason)
	}
	s.sink.ReplicaFallback(reason)
	logrus.WithFields(logrus.Fields{
		"primary": s.primary,
		"reason":  reason,
	}).Debug("Falling back to primary for read")
	return s.primary, nil
}
