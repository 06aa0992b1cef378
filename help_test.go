package lflist

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildList(t *testing.T, keys ...int) (*List[int, string], map[int]*Node[int, string]) {
	t.Helper()
	l := newIntList(t)
	nodes := make(map[int]*Node[int, string], len(keys))
	for _, k := range keys {
		n, ok := l.Insert(k, strconv.Itoa(k))
		require.True(t, ok)
		nodes[k] = n
	}
	return l, nodes
}

func TestFlagLeftBehindIsCompletedByInsert(t *testing.T) {
	l, nodes := buildList(t, 10, 20, 30, 40)

	// A delete that stopped right after flagging 20 -> 30.
	prev, ok := l.tryFlag(nodes[20], nodes[30])
	require.True(t, ok)
	require.Same(t, nodes[20], prev)
	require.ErrorIs(t, l.Check(), ErrFlaggedLink)

	// Flagging alone does not delete.
	_, ok = l.Search(30)
	require.True(t, ok)

	_, ok = l.Insert(25, "25")
	require.True(t, ok)

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 20, 25, 40}, keysOf(l))
	assert.Same(t, nodes[20], nodes[30].backlink.Load())
	assert.EqualValues(t, 1, l.Stats().Unlinks)
}

func TestFlagLeftBehindIsCompletedByDelete(t *testing.T) {
	l, nodes := buildList(t, 10, 20, 30)

	_, ok := l.tryFlag(nodes[10], nodes[20])
	require.True(t, ok)

	// The flag owner already claimed the deletion; this one only helps.
	n, ok := l.Delete(20)
	assert.False(t, ok)
	assert.Nil(t, n)

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 30}, keysOf(l))
	_, ok = l.Search(20)
	assert.False(t, ok)
}

func TestMarkLeftBehindIsSweptBySearch(t *testing.T) {
	l, nodes := buildList(t, 10, 20, 30, 40)

	_, ok := l.tryFlag(nodes[20], nodes[30])
	require.True(t, ok)
	nodes[30].backlink.Store(nodes[20])
	_, blocked := l.tryMark(nodes[30])
	require.False(t, blocked)
	require.True(t, nodes[30].marked())

	// A marked node is logically deleted even before it is unlinked.
	_, ok = l.Search(30)
	assert.False(t, ok)

	n, ok := l.Search(40)
	require.True(t, ok)
	assert.Equal(t, "40", n.Value())

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 20, 40}, keysOf(l))
	assert.EqualValues(t, 1, l.Stats().Unlinks)
}

func TestInsertRecoversThroughBacklink(t *testing.T) {
	l, nodes := buildList(t, 10, 20, 30, 40)

	fired := false
	insertCASHook = func(prev any) {
		if fired || prev != nodes[20] {
			return
		}
		fired = true
		_, ok := l.Delete(20)
		require.True(t, ok)
	}
	t.Cleanup(func() { insertCASHook = nil })

	n, ok := l.Insert(25, "25")
	require.True(t, ok)
	require.True(t, fired)
	requireLiveNode(t, n, 25, "25")

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 25, 30, 40}, keysOf(l))

	stats := l.Stats()
	assert.EqualValues(t, 1, stats.InsertCASRetries)
	assert.GreaterOrEqual(t, stats.BacklinkSteps, int64(1))
}

func TestInsertFindsKeyInsertedDuringRetry(t *testing.T) {
	l, nodes := buildList(t, 10, 30)

	fired := false
	insertCASHook = func(prev any) {
		if fired || prev != nodes[10] {
			return
		}
		fired = true
		_, ok := l.Insert(20, "first")
		require.True(t, ok)
	}
	t.Cleanup(func() { insertCASHook = nil })

	n, ok := l.Insert(20, "second")
	require.False(t, ok)
	assert.Equal(t, "first", n.Value())
	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 20, 30}, keysOf(l))
}

func TestHelpFlaggedResolvesNestedDeletions(t *testing.T) {
	l, nodes := buildList(t, 10, 20, 30, 40)

	_, ok := l.tryFlag(nodes[10], nodes[20])
	require.True(t, ok)
	_, ok = l.tryFlag(nodes[20], nodes[30])
	require.True(t, ok)

	// 20 cannot be marked until 30 is gone.
	l.helpFlagged(nodes[10], nodes[20])

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 40}, keysOf(l))
	assert.Same(t, nodes[10], nodes[20].backlink.Load())
	assert.Same(t, nodes[20], nodes[30].backlink.Load())
	assert.EqualValues(t, 2, l.Stats().Unlinks)
}

func TestHelpFlaggedLongChainDoesNotRecurse(t *testing.T) {
	const n = 10000
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}
	l, nodes := buildList(t, keys...)

	for i := n - 2; i >= 0; i-- {
		_, ok := l.tryFlag(nodes[i], nodes[i+1])
		require.True(t, ok)
	}

	l.helpFlagged(nodes[0], nodes[1])

	require.NoError(t, l.Check())
	assert.Equal(t, []int{0}, keysOf(l))
	assert.EqualValues(t, n-1, l.Stats().Unlinks)
}

func TestBacklinkSetBeforeMark(t *testing.T) {
	l, nodes := buildList(t, 10, 20)

	n, ok := l.Delete(20)
	require.True(t, ok)
	require.True(t, n.marked())
	assert.Same(t, nodes[10], n.backlink.Load())

	// Unlinked nodes keep their frozen successor for goroutines still
	// traversing through them.
	assert.Same(t, l.tail, n.next())
}

func TestConcurrentDeleteOfSameKeyHasOneWinner(t *testing.T) {
	l, _ := buildList(t, 10, 20, 30)

	var inner bool
	afterFlagHook = func(prev, target any) {
		if inner {
			return
		}
		inner = true
		n, ok := l.Delete(20)
		assert.False(t, ok)
		assert.Nil(t, n)
	}
	t.Cleanup(func() { afterFlagHook = nil })

	n, ok := l.Delete(20)
	require.True(t, ok)
	require.True(t, inner)
	assert.Equal(t, 20, n.Key())

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 30}, keysOf(l))
	assert.EqualValues(t, 1, l.Stats().Unlinks)
}

func TestSpliceRaceHasOneWinner(t *testing.T) {
	l, _ := buildList(t, 10, 20, 30)

	var fired bool
	beforeSpliceHook = func(prev, target any) {
		if fired {
			return
		}
		fired = true
		// The traversal finds 20 marked and unlinks it first.
		_, ok := l.Search(30)
		assert.True(t, ok)
	}
	t.Cleanup(func() { beforeSpliceHook = nil })

	_, ok := l.Delete(20)
	require.True(t, ok)
	require.True(t, fired)

	require.NoError(t, l.Check())
	assert.Equal(t, []int{10, 30}, keysOf(l))
	assert.EqualValues(t, 1, l.Stats().Unlinks)
}

func TestRecoverFromFallsBackToHead(t *testing.T) {
	l, nodes := buildList(t, 10)

	// Marked without a backlink cannot happen through the public API.
	nodes[10].succ.Store(&link[int, string]{next: l.tail, mark: true})
	assert.Same(t, l.head, l.recoverFrom(nodes[10]))
}
