package scatter

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
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lab5e/shardfunk/pkg/metrics"
	"github.com/lab5e/shardfunk/pkg/shard"
	"github.com/lab5e/shardfunk/pkg/toolbox"
)

// DefaultTimeout is the scatter-gather timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// Options controls a scatter-gather operation.
type Options struct {
	// MaxParallelism caps the number of concurrently running shard
	// queries. -1 (or 0) runs all shards at once.
	MaxParallelism int `kong:"help='Max concurrent shard queries (-1 = unlimited)',default='-1'"`

	// Timeout bounds the whole operation. Shards still in flight at the
	// deadline are recorded as failed with a timeout error.
	Timeout time.Duration `kong:"help='Scatter-gather timeout',default='30s'"`

	// AllowPartialResults returns the succeeded shards' results alongside
	// the failed shard list when some shards fail. When false, any shard
	// failure fails the whole operation with a single aggregated error
	// and the partial successes are discarded.
	AllowPartialResults bool `kong:"help='Return partial results on shard failures',default='true'"`
}

// DefaultOptions returns the default scatter-gather options: unlimited
// parallelism, 30 second timeout, partial results allowed. Availability
// over completeness for read paths.
func DefaultOptions() Options {
	return Options{
		MaxParallelism:      -1,
		Timeout:             DefaultTimeout,
		AllowPartialResults: true,
	}
}

// QueryFunc queries a single shard. It must honor the context; a query
// that ignores cancellation will keep its goroutine alive past the
// operation's deadline.
type QueryFunc[T any] func(ctx context.Context, shardID string) ([]T, error)

// Executor runs queries across shards concurrently and gathers the
// results. The executor holds no per-operation state so a single instance
// can run any number of operations concurrently.
type Executor[T any] struct {
	opts Options
	sink metrics.Sink
}

// NewExecutor creates an executor with the given options. A nil sink
// discards the metrics.
func NewExecutor[T any](opts Options, sink metrics.Sink) *Executor[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if sink == nil {
		sink = metrics.NewBlackHoleSink()
	}
	return &Executor[T]{opts: opts, sink: sink}
}

// Execute runs the query against each target shard and gathers the
// per-shard results. The context is bounded by the configured timeout and
// shared by all shard queries; external cancellation is honored and
// cancelled shards show up in the failed list, they are never silently
// dropped. Within one shard the query's own result order is preserved;
// across shards no order is guaranteed. The executor never retries a
// failed shard - rerun against the failed subset if retries are wanted.
func (e *Executor[T]) Execute(ctx context.Context, shardIDs []string, query QueryFunc[T]) (*Outcome[T], error) {
	opID := toolbox.RandomID()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	var sem *semaphore.Weighted
	if e.opts.MaxParallelism > 0 {
		sem = semaphore.NewWeighted(int64(e.opts.MaxParallelism))
	}

	outcome := &Outcome[T]{Targets: len(shardIDs)}
	mutex := &sync.Mutex{}

	// The error group is used purely to wait for the workers; individual
	// shard failures are gathered in the outcome, not returned, since one
	// failed shard must not cancel the others.
	wg := &errgroup.Group{}
	for _, id := range shardIDs {
		id := id
		wg.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					// The operation deadline expired before this shard got
					// a slot; it never ran.
					mutex.Lock()
					outcome.Failed = append(outcome.Failed, ShardError{ShardID: id, Err: e.classify(err, id)})
					mutex.Unlock()
					return nil
				}
				defer sem.Release(1)
			}
			queryStart := time.Now()
			items, err := query(ctx, id)
			queryElapsed := time.Since(queryStart)
			e.sink.ShardQuery(id, err == nil, queryElapsed)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				outcome.Failed = append(outcome.Failed, ShardError{ShardID: id, Err: e.classify(err, id)})
				return nil
			}
			outcome.Succeeded = append(outcome.Succeeded, ShardResult[T]{ShardID: id, Items: items})
			return nil
		})
	}
	// nolint - the workers never return errors
	wg.Wait()

	outcome.Elapsed = time.Since(start)
	e.sink.ScatterGather(len(shardIDs), len(outcome.Failed), outcome.Elapsed)
	logrus.WithFields(logrus.Fields{
		"operation": opID,
		"shards":    len(shardIDs),
		"failed":    len(outcome.Failed),
		"elapsed":   outcome.Elapsed,
	}).Debug("Scatter-gather completed")

	if len(outcome.Failed) > 0 && !e.opts.AllowPartialResults {
		// All-or-nothing: collapse into a single aggregated error and
		// discard the partial successes so callers cannot silently
		// undercount.
		var ids []string
		for _, f := range outcome.Failed {
			ids = append(ids, f.ShardID)
		}
		err := shard.NewError(shard.CodePartialFailure, "%d of %d shards failed: %s",
			len(outcome.Failed), len(shardIDs), strings.Join(ids, ", "))
		err.Elapsed = outcome.Elapsed
		return nil, err
	}
	return outcome, nil
}

// classify wraps shard query errors caused by the operation deadline in a
// timeout error. The check is on the query's own error, not the operation
// context; a genuine query failure racing the deadline keeps its original
// error. External cancellation passes through untouched.
func (e *Executor[T]) classify(err error, shardID string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		terr := shard.NewError(shard.CodeScatterTimeout, "shard query exceeded the %s operation timeout", e.opts.Timeout).WithShard(shardID)
		terr.Elapsed = e.opts.Timeout
		return terr
	}
	return err
}
