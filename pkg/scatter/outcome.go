package scatter

import "time"

// ShardResult is the result list from one shard. The item order is the
// order the shard's query returned them in.
type ShardResult[T any] struct {
	ShardID string
	Items   []T
}

// ShardError is a failed shard with the error that failed it.
type ShardError struct {
	ShardID string
	Err     error
}

// Outcome is the result of one scatter-gather operation. It is built while
// the operation runs and frozen once Execute returns; treat it as
// read-only.
type Outcome[T any] struct {
	// Targets is the number of shards the operation was issued against.
	Targets int

	// Succeeded holds the per-shard results for the shards that answered.
	Succeeded []ShardResult[T]

	// Failed holds the shards that returned errors, timed out or were
	// cancelled.
	Failed []ShardError

	// Elapsed is the wall-clock duration of the whole operation.
	Elapsed time.Duration
}

// Complete reports whether every target shard succeeded.
func (o *Outcome[T]) Complete() bool {
	return len(o.Failed) == 0 && len(o.Succeeded) == o.Targets
}

// Partial reports whether some but not all target shards failed.
func (o *Outcome[T]) Partial() bool {
	return len(o.Failed) > 0 && len(o.Failed) < o.Targets
}

// Items flattens the succeeded shards' results into a single list. The
// per-shard order is preserved; the shard order is arbitrary.
func (o *Outcome[T]) Items() []T {
	var ret []T
	for _, r := range o.Succeeded {
		ret = append(ret, r.Items...)
	}
	return ret
}
