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
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/lab5e/shardfunk/pkg/shard"
)

type ringEntry struct {
	pos     uint64
	shardID string
}

// Ring is a consistent hash ring. Each active shard gets a number of
// virtual nodes proportional to its weight; the entries are kept sorted by
// ring position for binary search lookups. A ring is built once from a
// topology and never mutated, so it is safe for concurrent reads.
type Ring struct {
	entries []ringEntry
}

// buildRing creates a ring for the active shards in the topology with
// vnodes*weight virtual nodes per shard. The virtual node positions are
// xxHash64 values of "{shardID}-{index}" which makes the ring stable
// across processes and restarts.
func buildRing(top *shard.Topology, vnodes int) (*Ring, error) {
	active := top.Active()
	if len(active) == 0 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "topology has no active shards")
	}
	total := 0
	for _, s := range active {
		total += vnodes * s.Weight
	}
	r := &Ring{entries: make([]ringEntry, 0, total)}
	for _, s := range active {
		for i := 0; i < vnodes*s.Weight; i++ {
			r.entries = append(r.entries, ringEntry{
				pos:     xxhash.Sum64String(fmt.Sprintf("%s-%d", s.ID, i)),
				shardID: s.ID,
			})
		}
	}
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].pos == r.entries[j].pos {
			// Position collisions are rare but possible with 64-bit hashes.
			// Break the tie on shard ID to keep the ring deterministic.
			return r.entries[i].shardID < r.entries[j].shardID
		}
		return r.entries[i].pos < r.entries[j].pos
	})
	return r, nil
}

// Owner returns the shard ID owning the ring position, ie the shard of the
// first virtual node at or after the position. The ring is circular so
// positions past the last virtual node wrap around to the first.
func (r *Ring) Owner(pos uint64) string {
	i := sort.Search(len(r.entries), func(n int) bool {
		return r.entries[n].pos >= pos
	})
	if i == len(r.entries) {
		i = 0
	}
	return r.entries[i].shardID
}

// VirtualNodeCount returns the total number of virtual nodes on the ring.
func (r *Ring) VirtualNodeCount() int {
	return len(r.entries)
}

// positions returns all virtual node positions in sorted order.
func (r *Ring) positions() []uint64 {
	ret := make([]uint64, len(r.entries))
	for i, e := range r.entries {
		ret[i] = e.pos
	}
	return ret
}
