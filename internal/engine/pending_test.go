package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPendingQueueFIFO(t *testing.T) {
	t.Parallel()

	var q pendingQueue
	require.True(t, q.Push(3))
	require.True(t, q.Push(1))
	require.True(t, q.Push(2))

	noSkip := func(Profile) bool { return false }

	p, ok := q.PopAssignable(noSkip)
	require.True(t, ok)
	require.Equal(t, Profile(3), p)

	p, ok = q.PopAssignable(noSkip)
	require.True(t, ok)
	require.Equal(t, Profile(1), p)

	p, ok = q.PopAssignable(noSkip)
	require.True(t, ok)
	require.Equal(t, Profile(2), p)

	_, ok = q.PopAssignable(noSkip)
	require.False(t, ok)
}

func TestPendingQueueRejectsDuplicates(t *testing.T) {
	t.Parallel()

	var q pendingQueue
	require.True(t, q.Push(5))
	require.False(t, q.Push(5))
	require.Equal(t, []Profile{5}, q.Snapshot())
}

func TestPendingQueueRemove(t *testing.T) {
	t.Parallel()

	var q pendingQueue
	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Remove(2)
	require.Equal(t, []Profile{1, 3}, q.Snapshot())

	q.Remove(9)
	require.Equal(t, []Profile{1, 3}, q.Snapshot())
}

func TestPendingQueueSkipKeepsOrder(t *testing.T) {
	t.Parallel()

	var q pendingQueue
	q.Push(8)
	q.Push(9)
	q.Push(10)

	// 8 is being stopped; the pop must skip it without losing its place.
	p, ok := q.PopAssignable(func(p Profile) bool { return p == 8 })
	require.True(t, ok)
	require.Equal(t, Profile(9), p)
	require.Equal(t, []Profile{8, 10}, q.Snapshot())

	_, ok = q.PopAssignable(func(Profile) bool { return true })
	require.False(t, ok)
	require.Equal(t, []Profile{8, 10}, q.Snapshot())
}
