package shard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const topologyYAML = `
shards:
  - id: shard-1
    connectionTarget: "host=db1"
  - id: shard-2
    connectionTarget: "host=db2"
    weight: 2
  - id: shard-3
    connectionTarget: "host=db3"
    disabled: true
`

func TestLoadTopology(t *testing.T) {
	assert := require.New(t)

	top, err := LoadTopology(strings.NewReader(topologyYAML))
	assert.NoError(err)
	assert.Equal(3, top.ShardCount())

	s, ok := top.Get("shard-2")
	assert.True(ok)
	assert.Equal(2, s.Weight)
	assert.Equal("host=db2", s.ConnectionTarget)
	assert.True(s.Active)

	s, ok = top.Get("shard-3")
	assert.True(ok)
	assert.False(s.Active)
}

func TestLoadTopologyErrors(t *testing.T) {
	assert := require.New(t)

	_, err := LoadTopology(strings.NewReader("shards: [not a shard"))
	assert.True(IsCode(err, CodeInvalidConfiguration))

	// Valid YAML, invalid topology (duplicate IDs).
	_, err = LoadTopology(strings.NewReader(`
shards:
  - id: shard-1
  - id: shard-1
`))
	assert.Error(err)

	_, err = LoadTopology(strings.NewReader("shards: []"))
	assert.Error(err)
}

func TestErrorCodes(t *testing.T) {
	assert := require.New(t)

	err := NewError(CodeShardNotFound, "shard %s is gone", "shard-1").WithShard("shard-1").WithKey("customer-42")
	assert.Equal(CodeShardNotFound, ErrorCode(err))
	assert.Contains(err.Error(), "shard_not_found")
	assert.Contains(err.Error(), "shard-1")
	assert.Contains(err.Error(), "customer-42")
	assert.False(IsCode(err, CodeShardKeyEmpty))
	assert.Equal("", ErrorCode(nil))
}
