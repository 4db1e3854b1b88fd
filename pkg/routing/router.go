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
import "github.com/lab5e/shardfunk/pkg/shard"

// Router resolves a shard key to the ID of the shard that owns it. A router
// is deterministic: the same key resolved against the same topology always
// yields the same shard ID. Routers are pure functions over structures that
// are built once at construction, so they are safe for unsynchronized
// concurrent calls. The directory router is the one exception; its backing
// store is internally synchronized instead.
type Router interface {
	// Resolve returns the ID of the active shard owning the key. The key
	// must be non-empty. Errors carry one of the stable codes in the shard
	// package.
	Resolve(key string) (string, error)
}

// checkKey validates the shard key. Every router runs this first.
func checkKey(key string) error {
	if key == "" {
		return shard.NewError(shard.CodeShardKeyEmpty, "shard key is empty")
	}
	return nil
}

// activeShard looks up a shard ID in the topology and checks that it is
// active. Used by the routers that map to configured shard IDs (range,
// directory, geo) where the configuration may point to a shard that has
// since been disabled.
func activeShard(top *shard.Topology, id, key string) (string, error) {
	s, ok := top.Get(id)
	if !ok {
		return "", shard.NewError(shard.CodeShardNotFound, "shard %s is not in the topology", id).WithShard(id).WithKey(key)
	}
	if !s.Active {
		return "", shard.NewError(shard.CodeShardNotFound, "shard %s is not active", id).WithShard(id).WithKey(key)
	}
	return id, nil
}
