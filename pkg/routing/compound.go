package routing

import (
	"strings"

	"github.com/lab5e/shardfunk/pkg/shard"
)

// DefaultKeySeparator splits compound keys into sub-keys. It is a colon
// rather than a dash since dashes are common inside tenant and region
// identifiers.
const DefaultKeySeparator = ":"

// CompoundRouter composes two or more routers into a pipeline. The key is
// split into one sub-key per component, each component resolves its
// sub-key independently and the resolved shard IDs are joined into a
// composite shard ID such as "shard-us-t1". A failure in any component
// propagates as the result of the whole resolution.
type CompoundRouter struct {
	components   []Router
	keySeparator string
	idSeparator  string
}

// NewCompoundRouter creates a compound router over the components. Keys
// are split on DefaultKeySeparator and shard IDs joined with a dash.
func NewCompoundRouter(components ...Router) (*CompoundRouter, error) {
	if len(components) < 2 {
		return nil, shard.NewError(shard.CodeInvalidConfiguration, "a compound router needs at least two components")
	}
	return &CompoundRouter{
		components:   components,
		keySeparator: DefaultKeySeparator,
		idSeparator:  "-",
	}, nil
}

// Resolve splits the key and resolves each sub-key against its component.
func (c *CompoundRouter) Resolve(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	parts := strings.Split(key, c.keySeparator)
	if len(parts) != len(c.components) {
		return "", shard.NewError(shard.CodeCompoundKeyMismatch,
			"key has %d sub-keys, router has %d components", len(parts), len(c.components)).WithKey(key)
	}
	ids := make([]string, len(parts))
	for i, part := range parts {
		id, err := c.components[i].Resolve(part)
		if err != nil {
			return "", err
		}
		ids[i] = id
	}
	return strings.Join(ids, c.idSeparator), nil
}
