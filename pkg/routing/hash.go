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
	"github.com/cespare/xxhash/v2"
	"github.com/lab5e/shardfunk/pkg/shard"
)

// DefaultVirtualNodes is the default number of virtual nodes per weight
// unit. Values between 100 and 500 give a reasonably smooth distribution;
// more virtual nodes smooth the distribution further at the cost of ring
// build time and memory.
const DefaultVirtualNodes = 150

// HashConfig configures the hash router.
type HashConfig struct {
	// VirtualNodesPerShard is the number of virtual nodes per unit of
	// shard weight. 0 means DefaultVirtualNodes.
	VirtualNodesPerShard int `kong:"help='Virtual nodes per shard weight unit',default='150'"`
}

// HashRouter routes keys with consistent hashing. Keys are hashed with
// xxHash64 onto a ring of virtual nodes; adding or removing a shard only
// moves the keys in the ring regions that changed owner, roughly 1/N of
// the key space for N shards.
type HashRouter struct {
	ring *Ring
}

// NewHashRouter builds a hash router for the topology. Resolving is
// O(log V) for V virtual nodes.
func NewHashRouter(top *shard.Topology, cfg HashConfig) (*HashRouter, error) {
	vnodes := cfg.VirtualNodesPerShard
	if vnodes == 0 {
		vnodes = DefaultVirtualNodes
	}
	if vnodes < 0 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "virtual node count must be positive")
	}
	ring, err := buildRing(top, vnodes)
	if err != nil {
		return nil, err
	}
	return &HashRouter{ring: ring}, nil
}

// Resolve hashes the key and returns the owning shard ID.
func (h *HashRouter) Resolve(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return h.ring.Owner(xxhash.Sum64String(key)), nil
}

// Ring returns the underlying hash ring. Used for rebalance planning.
func (h *HashRouter) Ring() *Ring {
	return h.ring
}
