package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/routing/directorystore"
	"github.com/lab5e/shardfunk/pkg/shard"
)

func TestDirectoryRouter(t *testing.T) {
	assert := require.New(t)

	top := testTopology(t, "shard-1", "shard-2")
	router, err := NewDirectoryRouter(top, directorystore.NewMemory(), DirectoryConfig{})
	assert.NoError(err)

	assert.NoError(router.Assign("tenant-a", "shard-1"))
	assert.NoError(router.Assign("tenant-b", "shard-2"))

	id, err := router.Resolve("tenant-a")
	assert.NoError(err)
	assert.Equal("shard-1", id)

	_, err = router.Resolve("tenant-c")
	assert.True(shard.IsCode(err, shard.CodeDirectoryKeyMissing))

	assert.NoError(router.Unassign("tenant-a"))
	_, err = router.Resolve("tenant-a")
	assert.Error(err)

	// Assigning to a shard outside the topology is rejected up front.
	err = router.Assign("tenant-d", "shard-9")
	assert.True(shard.IsCode(err, shard.CodeShardNotFound))
}

func TestDirectoryRouterDefaultShard(t *testing.T) {
	assert := require.New(t)

	top := testTopology(t, "shard-1", "shard-2")
	router, err := NewDirectoryRouter(top, directorystore.NewMemory(), DirectoryConfig{DefaultShardID: "shard-2"})
	assert.NoError(err)

	id, err := router.Resolve("unmapped")
	assert.NoError(err)
	assert.Equal("shard-2", id)

	_, err = NewDirectoryRouter(top, directorystore.NewMemory(), DirectoryConfig{DefaultShardID: "shard-9"})
	assert.Error(err)

	_, err = NewDirectoryRouter(top, nil, DirectoryConfig{})
	assert.Error(err)
}

func TestDirectoryRouterMutableStore(t *testing.T) {
	assert := require.New(t)

	top := testTopology(t, "shard-1", "shard-2")
	store := directorystore.NewMemory()
	router, err := NewDirectoryRouter(top, store, DirectoryConfig{})
	assert.NoError(err)

	// The store changes independently of the router; routing decisions
	// follow the store content.
	assert.NoError(store.Set("tenant-a", "shard-1"))
	id, err := router.Resolve("tenant-a")
	assert.NoError(err)
	assert.Equal("shard-1", id)

	assert.NoError(store.Set("tenant-a", "shard-2"))
	id, err = router.Resolve("tenant-a")
	assert.NoError(err)
	assert.Equal("shard-2", id)
}
