package shard

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

// Topology is an immutable set of shards. It is built once from
// configuration and replaced wholesale when shards are added or removed so
// in-flight routing decisions against the old topology stay consistent.
// There's no mutex here on purpose: a topology never changes after
// construction so it is safe for unsynchronized concurrent reads.
type Topology struct {
	shards []Shard
	byID   map[string]int
}

// NewTopology creates a topology from a list of shards. A topology must
// contain at least one shard and the shard IDs must be unique and non-empty.
// A zero weight is replaced with the default weight of 1; negative weights
// are configuration errors.
func NewTopology(shards []Shard) (*Topology, error) {
	if len(shards) == 0 {
		return nil, NewError(CodeInvalidConfiguration, "topology must contain at least one shard")
	}
	t := &Topology{
		shards: make([]Shard, len(shards)),
		byID:   make(map[string]int),
	}
	for i, s := range shards {
		if s.ID == "" {
			return nil, NewError(CodeInvalidConfiguration, "shard %d has an empty ID", i)
		}
		if _, exists := t.byID[s.ID]; exists {
			return nil, NewError(CodeInvalidConfiguration, "duplicate shard ID %s", s.ID)
		}
		if s.Weight == 0 {
			s.Weight = 1
		}
		if s.Weight < 0 {
			return nil, NewError(CodeInvalidConfiguration, "shard %s has negative weight %d", s.ID, s.Weight)
		}
		t.shards[i] = s
		t.byID[s.ID] = i
	}
	return t, nil
}

// Get returns the shard with the given ID.
func (t *Topology) Get(id string) (Shard, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Shard{}, false
	}
	return t.shards[i], true
}

// Shards returns a copy of all shards in the topology.
func (t *Topology) Shards() []Shard {
	ret := make([]Shard, len(t.shards))
	copy(ret, t.shards)
	return ret
}

// Active returns the shards that take part in routing.
func (t *Topology) Active() []Shard {
	var ret []Shard
	for _, s := range t.shards {
		if s.Active {
			ret = append(ret, s)
		}
	}
	return ret
}

// IDs returns the IDs for all shards in the topology.
func (t *Topology) IDs() []string {
	ret := make([]string, len(t.shards))
	for i, s := range t.shards {
		ret[i] = s.ID
	}
	return ret
}

// ActiveIDs returns the IDs for the active shards.
func (t *Topology) ActiveIDs() []string {
	var ret []string
	for _, s := range t.shards {
		if s.Active {
			ret = append(ret, s.ID)
		}
	}
	return ret
}

// ShardCount returns the number of shards in the topology.
func (t *Topology) ShardCount() int {
	return len(t.shards)
}

// WithShard returns a new topology with the shard added. The receiver is
// left untouched.
func (t *Topology) WithShard(s Shard) (*Topology, error) {
	return NewTopology(append(t.Shards(), s))
}

// WithoutShard returns a new topology with the shard removed. The receiver
// is left untouched.
func (t *Topology) WithoutShard(id string) (*Topology, error) {
	if _, ok := t.byID[id]; !ok {
		return nil, NewError(CodeShardNotFound, "no shard with ID %s in topology", id).WithShard(id)
	}
	var remaining []Shard
	for _, s := range t.shards {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	return NewTopology(remaining)
}
