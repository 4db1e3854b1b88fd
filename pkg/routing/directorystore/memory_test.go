package directorystore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	assert := require.New(t)

	store := NewMemory()
	_, found, err := store.Get("a")
	assert.NoError(err)
	assert.False(found)

	assert.NoError(store.Set("a", "shard-1"))
	id, found, err := store.Get("a")
	assert.NoError(err)
	assert.True(found)
	assert.Equal("shard-1", id)

	assert.NoError(store.Set("a", "shard-2"))
	id, _, _ = store.Get("a")
	assert.Equal("shard-2", id)

	assert.NoError(store.Set("b", "shard-1"))
	keys, err := store.Keys()
	assert.NoError(err)
	assert.ElementsMatch([]string{"a", "b"}, keys)

	assert.NoError(store.Delete("a"))
	assert.NoError(store.Delete("a"), "deleting twice is fine")
	_, found, _ = store.Get("a")
	assert.False(found)
}

func TestMemoryStoreConcurrency(t *testing.T) {
	assert := require.New(t)

	store := NewMemory()
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				// nolint - error returns don't matter here
				store.Set(key, "shard-1")
				store.Get(key)
				store.Keys()
				store.Delete(key)
			}
		}(i)
	}
	wg.Wait()
	keys, err := store.Keys()
	assert.NoError(err)
	assert.Empty(keys)
}
