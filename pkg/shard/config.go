package shard

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type shardConfig struct {
	ID               string `yaml:"id"`
	ConnectionTarget string `yaml:"connectionTarget"`
	Weight           int    `yaml:"weight"`
	Disabled         bool   `yaml:"disabled"`
}

type topologyConfig struct {
	Shards []shardConfig `yaml:"shards"`
}

// LoadTopology reads a YAML topology description. The format is a list of
// shards with id, connection target, optional weight (default 1) and an
// optional disabled flag:
//
//	shards:
//	  - id: shard-1
//	    connectionTarget: "host=db1"
//	  - id: shard-2
//	    connectionTarget: "host=db2"
//	    weight: 2
func LoadTopology(r io.Reader) (*Topology, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := topologyConfig{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, NewError(CodeInvalidConfiguration, "malformed topology config: %v", err)
	}
	shards := make([]Shard, len(cfg.Shards))
	for i, s := range cfg.Shards {
		shards[i] = Shard{
			ID:               s.ID,
			ConnectionTarget: s.ConnectionTarget,
			Weight:           s.Weight,
			Active:           !s.Disabled,
		}
	}
	return NewTopology(shards)
}

// LoadTopologyFile reads a YAML topology description from a file.
func LoadTopologyFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := LoadTopology(f)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"file":   path,
		"shards": t.ShardCount(),
		"active": len(t.ActiveIDs()),
	}).Info("Loaded shard topology")
	return t, nil
}
