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
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lab5e/shardfunk/pkg/shard"
)

// Selector picks one replica from a candidate list. The candidates have
// already passed health and staleness filtering; the selector only applies
// its distribution strategy. All selectors are safe for concurrent calls.
type Selector interface {
	Select(candidates []string) (string, error)
}

func noCandidates() error {
	return shard.NewError(shard.CodeNoHealthyReplica, "no eligible replicas to select from")
}

// RoundRobin hands out candidates in strict rotation via an atomic
// counter. No randomness, exactly even distribution.
type RoundRobin struct {
	counter uint64
}

// NewRoundRobin creates a round robin selector.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Select returns the next candidate in rotation.
func (r *RoundRobin) Select(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", noCandidates()
	}
	n := atomic.AddUint64(&r.counter, 1)
	return candidates[(n-1)%uint64(len(candidates))], nil
}

// Random picks a uniformly random candidate per call.
type Random struct {
}

// NewRandom creates a random selector.
func NewRandom() *Random {
	return &Random{}
}

// Select returns a uniformly random candidate.
func (r *Random) Select(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", noCandidates()
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// LeastLatency tracks an exponential moving average of observed latency
// per replica and selects the candidate with the lowest average. Call
// Observe from the call site after each query. Candidates without samples
// are ignored as long as at least one candidate has samples; when none
// have, selection falls back to round robin.
type LeastLatency struct {
	mutex    sync.RWMutex
	averages map[string]*emaCalculator
	fallback RoundRobin
}

// NewLeastLatency creates a least-latency selector.
func NewLeastLatency() *LeastLatency {
	return &LeastLatency{averages: make(map[string]*emaCalculator)}
}

// Observe records a latency sample for a replica.
func (l *LeastLatency) Observe(id string, latency time.Duration) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	ema, ok := l.averages[id]
	if !ok {
		ema = newEMACalculator()
		l.averages[id] = ema
	}
	ema.Add(float64(latency))
}

// Select returns the candidate with the lowest average latency.
func (l *LeastLatency) Select(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", noCandidates()
	}
	l.mutex.RLock()
	best := ""
	bestAvg := 0.0
	for _, id := range candidates {
		ema, ok := l.averages[id]
		if !ok || !ema.HasSamples() {
			continue
		}
		if best == "" || ema.Average() < bestAvg {
			best = id
			bestAvg = ema.Average()
		}
	}
	l.mutex.RUnlock()
	if best == "" {
		return l.fallback.Select(candidates)
	}
	return best, nil
}

// LeastConnections tracks live connection counts per replica and selects
// the candidate with the fewest. The caller increments on acquire and
// decrements on release.
type LeastConnections struct {
	mutex  sync.RWMutex
	counts map[string]int64
}

// NewLeastConnections creates a least-connections selector.
func NewLeastConnections() *LeastConnections {
	return &LeastConnections{counts: make(map[string]int64)}
}

// Acquire records a connection taken to the replica.
func (l *LeastConnections) Acquire(id string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.counts[id]++
}

// Release records a connection returned from the replica.
func (l *LeastConnections) Release(id string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.counts[id] > 0 {
		l.counts[id]--
	}
}

// Select returns the candidate with the fewest live connections.
// Candidates without a recorded count are treated as idle.
func (l *LeastConnections) Select(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", noCandidates()
	}
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	best := candidates[0]
	bestCount := l.counts[best]
	for _, id := range candidates[1:] {
		if c := l.counts[id]; c < bestCount {
			best = id
			bestCount = c
		}
	}
	return best, nil
}

// WeightedReplica is a replica with a selection weight.
type WeightedReplica struct {
	ID     string
	Weight int
}

// WeightedRandom selects replicas randomly with traffic share proportional
// to the configured weights. Selection over the full configured set is a
// binary search on precomputed cumulative weight sums; selection over a
// filtered subset rebuilds the sums for the subset on the fly.
type WeightedRandom struct {
	ids        []string
	cumulative []int
	total      int
	weights    map[string]int
}

// NewWeightedRandom creates a weighted random selector. Weights must be
// positive.
func NewWeightedRandom(replicas []WeightedReplica) (*WeightedRandom, error) {
	if len(replicas) == 0 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "at least one weighted replica is required")
	}
	w := &WeightedRandom{
		ids:        make([]string, len(replicas)),
		cumulative: make([]int, len(replicas)),
		weights:    make(map[string]int),
	}
	for i, r := range replicas {
		if r.Weight < 1 {
			return nil, shard.NewError(shard.CodeInvalidConfiguration, "replica %s has non-positive weight %d", r.ID, r.Weight)
		}
		w.total += r.Weight
		w.ids[i] = r.ID
		w.cumulative[i] = w.total
		w.weights[r.ID] = r.Weight
	}
	return w, nil
}

// Select draws a replica with probability proportional to its weight.
// Candidates not in the configured set get the default weight of 1.
func (w *WeightedRandom) Select(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", noCandidates()
	}
	if w.isFullSet(candidates) {
		// Fast path: the full configured set, use the precomputed sums.
		draw := rand.Intn(w.total)
		i := sort.SearchInts(w.cumulative, draw+1)
		return w.ids[i], nil
	}
	total := 0
	sums := make([]int, len(candidates))
	for i, id := range candidates {
		weight, ok := w.weights[id]
		if !ok {
			weight = 1
		}
		total += weight
		sums[i] = total
	}
	draw := rand.Intn(total)
	i := sort.SearchInts(sums, draw+1)
	return candidates[i], nil
}

func (w *WeightedRandom) isFullSet(candidates []string) bool {
	if len(candidates) != len(w.ids) {
		return false
	}
	for i, id := range candidates {
		if w.ids[i] != id {
			return false
		}
	}
	return true
}
