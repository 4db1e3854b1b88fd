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

// DirectoryStore is the key to shard ID mapping behind the directory
// router. Implementations must be safe for concurrent readers and writers;
// the router itself adds no locking. The directorystore package has an
// in-memory implementation for development and tests and a Badger-backed
// one for persistent mappings.
type DirectoryStore interface {
	// Get returns the shard ID mapped to the key. The second return value
	// is false when the key is unmapped.
	Get(key string) (string, bool, error)

	// Set maps a key to a shard ID, replacing any existing mapping.
	Set(key, shardID string) error

	// Delete removes the mapping for a key. Deleting an unmapped key is
	// not an error.
	Delete(key string) error

	// Keys lists all mapped keys.
	Keys() ([]string, error)
}

// DirectoryConfig configures the directory router.
type DirectoryConfig struct {
	// DefaultShardID receives all unmapped keys. Empty means unmapped
	// keys are resolve errors.
	DefaultShardID string `kong:"help='Shard for unmapped directory keys'"`
}

// DirectoryRouter routes keys via explicit lookup in a store. This is the
// only router whose decisions depend on state that changes independently
// of the router, so determinism holds per store content rather than per
// construction.
type DirectoryRouter struct {
	top   *shard.Topology
	store DirectoryStore
	cfg   DirectoryConfig
}

// NewDirectoryRouter creates a directory router on top of a store.
func NewDirectoryRouter(top *shard.Topology, store DirectoryStore, cfg DirectoryConfig) (*DirectoryRouter, error) {
	if store == nil {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "directory router requires a store")
	}
	if cfg.DefaultShardID != "" {
		if _, ok := top.Get(cfg.DefaultShardID); !ok {
			return nil, shard.NewError(shard.CodeShardNotFound, "default shard %s is not in the topology", cfg.DefaultShardID).WithShard(cfg.DefaultShardID)
		}
	}
	return &DirectoryRouter{top: top, store: store, cfg: cfg}, nil
}

// Resolve looks the key up in the store, falling back to the default shard
// for unmapped keys when one is configured.
func (d *DirectoryRouter) Resolve(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	id, found, err := d.store.Get(key)
	if err != nil {
		return "", err
	}
	if !found {
		if d.cfg.DefaultShardID == "" {
			return "", shard.NewError(shard.CodeDirectoryKeyMissing, "key is not mapped and no default shard is configured").WithKey(key)
		}
		id = d.cfg.DefaultShardID
	}
	return activeShard(d.top, id, key)
}

// Assign maps a key to a shard, validating the shard against the topology
// first.
func (d *DirectoryRouter) Assign(key, shardID string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, ok := d.top.Get(shardID); !ok {
		return shard.NewError(shard.CodeShardNotFound, "shard %s is not in the topology", shardID).WithShard(shardID).WithKey(key)
	}
	return d.store.Set(key, shardID)
}

// Unassign removes the mapping for a key.
func (d *DirectoryRouter) Unassign(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return d.store.Delete(key)
}
