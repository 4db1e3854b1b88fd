package scatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intOutcome(lists ...[]int) *Outcome[int] {
	o := &Outcome[int]{Targets: len(lists)}
	for i, items := range lists {
		o.Succeeded = append(o.Succeeded, ShardResult[int]{
			ShardID: string(rune('a' + i)),
			Items:   items,
		})
	}
	return o
}

func TestScalarReductions(t *testing.T) {
	assert := require.New(t)

	o := intOutcome([]int{1, 5, 3}, []int{7}, []int{2, 2})
	assert.Equal(6, Count(o))
	assert.Equal(20, Sum(o))

	min, ok := Min(o)
	assert.True(ok)
	assert.Equal(1, min)

	max, ok := Max(o)
	assert.True(ok)
	assert.Equal(7, max)

	empty := intOutcome()
	assert.Equal(0, Count(empty))
	assert.Equal(0, Sum(empty))
	_, ok = Min(empty)
	assert.False(ok)
	_, ok = Max(empty)
	assert.False(ok)
}

func TestAvgUsesGlobalSums(t *testing.T) {
	assert := require.New(t)

	// A small shard with a high local average and a big shard with a low
	// one. Averaging the averages would give (10+1)/2 = 5.5; the correct
	// global average is (10+1000)/(1+1000).
	o := &Outcome[PartialAvg]{
		Targets: 2,
		Succeeded: []ShardResult[PartialAvg]{
			{ShardID: "small", Items: []PartialAvg{{Sum: 10, Count: 1}}},
			{ShardID: "big", Items: []PartialAvg{{Sum: 1000, Count: 1000}}},
		},
	}
	avg, ok := Avg(o)
	assert.True(ok)
	assert.InDelta(1010.0/1001.0, avg, 0.0001)

	_, ok = Avg(&Outcome[PartialAvg]{})
	assert.False(ok)
}

func TestDistinct(t *testing.T) {
	assert := require.New(t)

	// Duplicates across shards happen near partition boundaries; the
	// merge layer deduplicates again.
	o := intOutcome([]int{1, 2, 3}, []int{3, 4}, []int{4, 5, 1})
	assert.ElementsMatch([]int{1, 2, 3, 4, 5}, Distinct(o))
}

func TestTopN(t *testing.T) {
	assert := require.New(t)

	desc := func(a, b int) bool { return a > b }
	o := intOutcome([]int{9, 5, 1}, []int{8, 7, 2}, []int{6, 4, 3})
	assert.Equal([]int{9, 8, 7}, TopN(o, 3, desc))

	// Fewer candidates than n just returns what there is.
	assert.Len(TopN(intOutcome([]int{1}), 5, desc), 1)
}

func TestMergeGroups(t *testing.T) {
	assert := require.New(t)

	o := &Outcome[Group[string]]{
		Targets: 2,
		Succeeded: []ShardResult[Group[string]]{
			{ShardID: "a", Items: []Group[string]{
				{Key: "red", Sum: 10, Count: 2},
				{Key: "blue", Sum: 5, Count: 1},
			}},
			{ShardID: "b", Items: []Group[string]{
				{Key: "red", Sum: 4, Count: 1},
			}},
		},
	}
	merged := MergeGroups(o)
	assert.Len(merged, 2)
	assert.Equal(14.0, merged["red"].Sum)
	assert.Equal(int64(3), merged["red"].Count)
	assert.Equal(5.0, merged["blue"].Sum)
}

func TestMergePages(t *testing.T) {
	assert := require.New(t)

	asc := func(a, b int) bool { return a < b }
	// Each shard returns its own first "page" of 3 under the same order.
	o := intOutcome([]int{1, 4, 7}, []int{2, 5, 8}, []int{3, 6, 9})

	assert.Equal([]int{1, 2, 3}, MergePages(o, 0, 3, asc))
	assert.Equal([]int{4, 5, 6}, MergePages(o, 1, 3, asc))
	assert.Equal([]int{7, 8, 9}, MergePages(o, 2, 3, asc))
	assert.Empty(MergePages(o, 3, 3, asc))
	assert.Empty(MergePages(o, -1, 3, asc))
	assert.Empty(MergePages(o, 0, 0, asc))

	// Last page may be short.
	assert.Equal([]int{9}, MergePages(o, 4, 2, asc))
}
