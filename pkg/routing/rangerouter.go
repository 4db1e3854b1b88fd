package routing

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
	"sort"
	"strings"

	"github.com/lab5e/shardfunk/pkg/shard"
)

// Range maps the half-open key interval [Start, End) to a shard. A nil
// Start is unbounded below and a nil End is unbounded above.
type Range struct {
	Start   *string
	End     *string
	ShardID string
}

// RangeConfig configures the range router.
type RangeConfig struct {
	// Compare is the key ordering. Nil means ordinal string comparison.
	Compare func(a, b string) int
}

// RangeRouter routes keys by range lookup. The configured ranges must not
// overlap; gaps are allowed by construction but resolving a key that falls
// in a gap is an error, so in practice the ranges should partition the
// whole key space.
type RangeRouter struct {
	top     *shard.Topology
	ranges  []Range
	compare func(a, b string) int
}

// NewRangeRouter creates a range router. Overlapping ranges, multiple
// unbounded starts or multiple unbounded ends are configuration errors
// reported here, not at resolve time.
func NewRangeRouter(top *shard.Topology, ranges []Range, cfg RangeConfig) (*RangeRouter, error) {
	if len(ranges) == 0 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "at least one range is required")
	}
	compare := cfg.Compare
	if compare == nil {
		compare = strings.Compare
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Start, sorted[j].Start
		if a == nil {
			return b != nil
		}
		if b == nil {
			return false
		}
		return compare(*a, *b) < 0
	})

	unboundedStarts := 0
	unboundedEnds := 0
	for i, r := range sorted {
		if _, ok := top.Get(r.ShardID); !ok {
			return nil, shard.NewError(shard.CodeShardNotFound, "range %d maps to unknown shard %s", i, r.ShardID).WithShard(r.ShardID)
		}
		if r.Start == nil {
			unboundedStarts++
		}
		if r.End == nil {
			unboundedEnds++
		}
		if r.Start != nil && r.End != nil && compare(*r.Start, *r.End) >= 0 {
			return nil, shard.NewError(shard.CodeInvalidConfiguration, "range %d is empty: start %q is not below end %q", i, *r.Start, *r.End)
		}
		if i > 0 {
			prev := sorted[i-1]
			// After sorting, the previous range must end at or before this
			// range's start or they overlap.
			if prev.End == nil || r.Start == nil || compare(*prev.End, *r.Start) > 0 {
				return nil, shard.NewError(shard.CodeRangeOverlap, "ranges for shards %s and %s overlap", prev.ShardID, r.ShardID)
			}
		}
	}
	if unboundedStarts > 1 || unboundedEnds > 1 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "only one range may be unbounded at each end")
	}

	return &RangeRouter{top: top, ranges: sorted, compare: compare}, nil
}

// Resolve finds the range containing the key and returns its shard ID.
// Lookup is a binary search over the sorted ranges.
func (r *RangeRouter) Resolve(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	// First range whose end is above the key. Since the ranges are sorted
	// and non-overlapping this is the only candidate.
	i := sort.Search(len(r.ranges), func(n int) bool {
		end := r.ranges[n].End
		return end == nil || r.compare(key, *end) < 0
	})
	if i == len(r.ranges) {
		return "", shard.NewError(shard.CodeNoMatchingRange, "no range covers key").WithKey(key)
	}
	c := r.ranges[i]
	if c.Start != nil && r.compare(key, *c.Start) < 0 {
		return "", shard.NewError(shard.CodeNoMatchingRange, "no range covers key").WithKey(key)
	}
	return activeShard(r.top, c.ShardID, key)
}

// Bound is a convenience helper for building range literals.
func Bound(s string) *string {
	return &s
}
