package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/shard"
)

func TestCompoundRouter(t *testing.T) {
	assert := require.New(t)

	geoTop := testTopology(t, "shard-us", "shard-eu")
	geo, err := NewGeoRouter(geoTop, []Region{
		{Code: "us-east", ShardID: "shard-us"},
		{Code: "eu-west", ShardID: "shard-eu"},
	}, GeoConfig{RequireExactMatch: true})
	assert.NoError(err)

	tenantTop := testTopology(t, "t1", "t2", "t3")
	hash, err := NewHashRouter(tenantTop, HashConfig{})
	assert.NoError(err)

	router, err := NewCompoundRouter(geo, hash)
	assert.NoError(err)

	id, err := router.Resolve("us-east:tenant-42")
	assert.NoError(err)
	assert.Contains(id, "shard-us-")

	tenantShard, err := hash.Resolve("tenant-42")
	assert.NoError(err)
	assert.Equal("shard-us-"+tenantShard, id)

	// Deterministic like any other router.
	again, err := router.Resolve("us-east:tenant-42")
	assert.NoError(err)
	assert.Equal(id, again)
}

func TestCompoundRouterErrors(t *testing.T) {
	assert := require.New(t)

	top := testTopology(t, "shard-1")
	hash, err := NewHashRouter(top, HashConfig{})
	assert.NoError(err)

	_, err = NewCompoundRouter(hash)
	assert.Error(err, "one component is not a compound")

	geo, err := NewGeoRouter(top, []Region{{Code: "us", ShardID: "shard-1"}}, GeoConfig{RequireExactMatch: true})
	assert.NoError(err)
	router, err := NewCompoundRouter(geo, hash)
	assert.NoError(err)

	_, err = router.Resolve("")
	assert.True(shard.IsCode(err, shard.CodeShardKeyEmpty))

	_, err = router.Resolve("just-one-part")
	assert.True(shard.IsCode(err, shard.CodeCompoundKeyMismatch))

	_, err = router.Resolve("a:b:c")
	assert.True(shard.IsCode(err, shard.CodeCompoundKeyMismatch))

	// A component failure propagates.
	_, err = router.Resolve("unmapped-region:tenant-1")
	assert.True(shard.IsCode(err, shard.CodeRegionNotFound))
}
