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
	"strings"

	"github.com/lab5e/shardfunk/pkg/shard"
)

// Region maps a region code to a shard. A region may declare a single
// fallback region which is consulted when the region itself has no shard
// mapping; regions with an empty ShardID act purely as fallback pointers.
type Region struct {
	Code     string
	ShardID  string
	Fallback string
}

// GeoConfig configures the geo router.
type GeoConfig struct {
	// RequireExactMatch disables fallback chains and the default region;
	// only direct region hits resolve.
	RequireExactMatch bool `kong:"help='Disable geo fallbacks',default='false'"`

	// DefaultRegion receives lookups that neither match a region directly
	// nor through a fallback chain. Empty means such lookups fail.
	DefaultRegion string `kong:"help='Region for unmatched lookups'"`
}

// GeoRouter routes region codes to shards through a region map with
// optional fallback chains. The fallback graph must be acyclic; cycles are
// detected at construction, never at resolve time, so resolution always
// terminates.
type GeoRouter struct {
	top     *shard.Topology
	regions map[string]Region
	cfg     GeoConfig
}

// NewGeoRouter creates a geo router. A cyclic fallback chain is a
// configuration error naming the regions on the cycle.
func NewGeoRouter(top *shard.Topology, regions []Region, cfg GeoConfig) (*GeoRouter, error) {
	if len(regions) == 0 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "at least one region is required")
	}
	byCode := make(map[string]Region)
	for _, r := range regions {
		if r.Code == "" {
			return nil, shard.NewError(shard.CodeInvalidConfiguration, "region with empty code")
		}
		if _, exists := byCode[r.Code]; exists {
			return nil, shard.NewError(shard.CodeInvalidConfiguration, "duplicate region code %s", r.Code)
		}
		if r.ShardID != "" {
			if _, ok := top.Get(r.ShardID); !ok {
				return nil, shard.NewError(shard.CodeShardNotFound, "region %s maps to unknown shard %s", r.Code, r.ShardID).WithShard(r.ShardID)
			}
		}
		byCode[r.Code] = r
	}
	if err := findFallbackCycle(byCode); err != nil {
		return nil, err
	}
	if cfg.DefaultRegion != "" {
		if _, ok := byCode[cfg.DefaultRegion]; !ok {
			return nil, shard.NewError(shard.CodeInvalidConfiguration, "default region %s is not configured", cfg.DefaultRegion)
		}
	}
	return &GeoRouter{top: top, regions: byCode, cfg: cfg}, nil
}

// findFallbackCycle walks every fallback chain. Each region has at most
// one fallback so a chain either terminates or revisits a region.
func findFallbackCycle(regions map[string]Region) error {
	for start := range regions {
		visited := map[string]bool{}
		var path []string
		code := start
		for {
			r, ok := regions[code]
			if !ok || r.Fallback == "" {
				break
			}
			if visited[code] {
				return shard.NewError(shard.CodeFallbackCycle, "fallback cycle: %s", strings.Join(append(path, code), " -> "))
			}
			visited[code] = true
			path = append(path, code)
			code = r.Fallback
		}
	}
	return nil
}

// Resolve maps a region code to a shard. Direct hits win; otherwise the
// fallback chain is walked until a mapped region is found, then the
// default region is consulted. With RequireExactMatch only direct hits
// resolve.
func (g *GeoRouter) Resolve(regionCode string) (string, error) {
	if err := checkKey(regionCode); err != nil {
		return "", err
	}
	if r, ok := g.regions[regionCode]; ok && r.ShardID != "" {
		return activeShard(g.top, r.ShardID, regionCode)
	}
	if g.cfg.RequireExactMatch {
		return "", shard.NewError(shard.CodeRegionNotFound, "no shard mapping for region").WithKey(regionCode)
	}
	if id, ok := g.chainShard(regionCode); ok {
		return activeShard(g.top, id, regionCode)
	}
	if g.cfg.DefaultRegion != "" {
		// The default region may itself be a pure fallback pointer; its
		// chain is walked like any other.
		if id, ok := g.chainShard(g.cfg.DefaultRegion); ok {
			return activeShard(g.top, id, regionCode)
		}
	}
	return "", shard.NewError(shard.CodeRegionNotFound, "no shard mapping for region").WithKey(regionCode)
}

// chainShard returns the first mapped shard on the region's fallback
// chain, starting with the region itself. Cycles were rejected at
// construction so the walk terminates.
func (g *GeoRouter) chainShard(code string) (string, bool) {
	r, ok := g.regions[code]
	for ok {
		if r.ShardID != "" {
			return r.ShardID, true
		}
		if r.Fallback == "" {
			return "", false
		}
		r, ok = g.regions[r.Fallback]
	}
	return "", false
}
