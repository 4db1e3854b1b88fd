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

// Shard describes a single physical shard. The connection target is an
// opaque string handed back to the data access layer; the library never
// parses it.
type Shard struct {
	// ID is the unique shard identifier within a topology.
	ID string

	// ConnectionTarget is the opaque connection string for the shard.
	ConnectionTarget string

	// Weight is the relative traffic share for the shard. Routers that
	// consult weights (the hash router uses it to scale the virtual node
	// count) will send proportionally more keys to heavier shards.
	// Initially this can be set to 1 for all shards but if some shards run
	// on beefier hardware you can increase their weight.
	Weight int

	// Active flags whether the shard takes part in routing. Inactive
	// shards stay in the topology (their data is still there) but routers
	// skip them.
	Active bool
}

// New creates an active shard with the default weight of 1.
func New(id, connectionTarget string) Shard {
	return Shard{
		ID:               id,
		ConnectionTarget: connectionTarget,
		Weight:           1,
		Active:           true,
	}
}
