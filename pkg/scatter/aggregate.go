package scatter

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
import "sort"

// Number is the constraint for the numeric reductions.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Count returns the total number of items across the succeeded shards.
func Count[T any](o *Outcome[T]) int {
	n := 0
	for _, r := range o.Succeeded {
		n += len(r.Items)
	}
	return n
}

// Sum reduces the items across all succeeded shards with addition.
func Sum[T Number](o *Outcome[T]) T {
	var sum T
	for _, r := range o.Succeeded {
		for _, v := range r.Items {
			sum += v
		}
	}
	return sum
}

// Min returns the smallest item across the succeeded shards. The second
// return value is false when there are no items.
func Min[T Number](o *Outcome[T]) (T, bool) {
	var min T
	found := false
	for _, r := range o.Succeeded {
		for _, v := range r.Items {
			if !found || v < min {
				min = v
				found = true
			}
		}
	}
	return min, found
}

// Max returns the largest item across the succeeded shards. The second
// return value is false when there are no items.
func Max[T Number](o *Outcome[T]) (T, bool) {
	var max T
	found := false
	for _, r := range o.Succeeded {
		for _, v := range r.Items {
			if !found || v > max {
				max = v
				found = true
			}
		}
	}
	return max, found
}

// PartialAvg is the per-shard input to Avg. Shards report their local sum
// and count; the average is computed once globally.
type PartialAvg struct {
	Sum   float64
	Count int64
}

// Avg computes the global average from per-shard (sum, count) pairs.
// Averaging the per-shard averages would bias the result toward small
// shards, so shards must report the pair, not their local average. The
// second return value is false when the total count is zero.
func Avg(o *Outcome[PartialAvg]) (float64, bool) {
	var sum float64
	var count int64
	for _, r := range o.Succeeded {
		for _, p := range r.Items {
			sum += p.Sum
			count += p.Count
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Distinct returns the union of the shards' items with duplicates removed.
// Shards deduplicate locally but duplicates can still occur across shards
// near partition boundaries, so the merge deduplicates again.
func Distinct[T comparable](o *Outcome[T]) []T {
	seen := make(map[T]bool)
	var ret []T
	for _, r := range o.Succeeded {
		for _, v := range r.Items {
			if !seen[v] {
				seen[v] = true
				ret = append(ret, v)
			}
		}
	}
	return ret
}

// TopN merges the shards' candidate lists, re-sorts them under less and
// truncates to n. Every shard must return at least n candidates of its
// own; a shard that returns fewer may cause an undercount in the merged
// result. That is a caller contract - the merge cannot detect it.
func TopN[T any](o *Outcome[T], n int, less func(a, b T) bool) []T {
	merged := o.Items()
	sort.SliceStable(merged, func(i, j int) bool { return less(merged[i], merged[j]) })
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

// Group is one aggregation group: a key with the summed value and item
// count for that key.
type Group[K comparable] struct {
	Key   K
	Sum   float64
	Count int64
}

// MergeGroups merges per-shard groups by key, summing their values and
// counts. Key equality is exact value comparison.
func MergeGroups[K comparable](o *Outcome[Group[K]]) map[K]Group[K] {
	ret := make(map[K]Group[K])
	for _, r := range o.Succeeded {
		for _, g := range r.Items {
			merged := ret[g.Key]
			merged.Key = g.Key
			merged.Sum += g.Sum
			merged.Count += g.Count
			ret[g.Key] = merged
		}
	}
	return ret
}

// MergePages implements the overfetch-and-merge pagination strategy: every
// shard is asked for pageSize items under the same sort order, the pages
// are combined, re-sorted under less and the requested zero-based page
// window is cut out. This overfetches (shardCount-1)*pageSize rows per
// call, which is the documented trade-off; deep pagination should use
// shard-local cursors instead.
func MergePages[T any](o *Outcome[T], page, pageSize int, less func(a, b T) bool) []T {
	if page < 0 || pageSize <= 0 {
		return nil
	}
	merged := o.Items()
	sort.SliceStable(merged, func(i, j int) bool { return less(merged[i], merged[j]) })
	from := page * pageSize
	if from >= len(merged) {
		return nil
	}
	to := from + pageSize
	if to > len(merged) {
		to = len(merged)
	}
	return merged[from:to]
}
