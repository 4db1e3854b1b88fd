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
import "sort"

// Movement is a ring arc that changes owner between two ring generations.
// Keys hashing into (Start, End] move from shard From to shard To. A
// movement with Start > End wraps around through position zero.
type Movement struct {
	Start uint64
	End   uint64
	From  string
	To    string
}

// AffectedRanges compares two hash rings and returns the ring arcs whose
// ownership differs. This is a planning operation only; it reports which
// key ranges an external migration process must move, it never moves data
// itself. Arcs with unchanged ownership are not reported, and adjacent
// arcs moving between the same pair of shards are merged.
func AffectedRanges(oldRing, newRing *Ring) []Movement {
	positions := unionPositions(oldRing.positions(), newRing.positions())
	if len(positions) == 0 {
		return nil
	}

	var ret []Movement
	// Each arc runs from the previous union position (exclusive) to the
	// current one (inclusive); the owner of every point on the arc equals
	// the owner of the arc's end position. The first arc wraps from the
	// last position through zero.
	prev := positions[len(positions)-1]
	for _, pos := range positions {
		from := oldRing.Owner(pos)
		to := newRing.Owner(pos)
		if from != to {
			if n := len(ret); n > 0 && ret[n-1].End == prev && ret[n-1].From == from && ret[n-1].To == to {
				ret[n-1].End = pos
			} else {
				ret = append(ret, Movement{Start: prev, End: pos, From: from, To: to})
			}
		}
		prev = pos
	}
	return ret
}

func unionPositions(a, b []uint64) []uint64 {
	merged := make([]uint64, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	// dedupe in place
	out := merged[:0]
	for i, v := range merged {
		if i == 0 || v != merged[i-1] {
			out = append(out, v)
		}
	}
	return out
}
