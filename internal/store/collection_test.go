package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	id    int64
	label string
}

func (i item) EntityID() int64 { return i.id }

func ids(items []item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.id)
	}
	return out
}

func TestCollection_FetchLifecycle(t *testing.T) {
	var c Collection[item]
	assert.Equal(t, Idle, c.Snapshot().Lifecycle)

	seq := c.beginFetch()
	assert.Equal(t, Loading, c.Snapshot().Lifecycle)

	assert.True(t, c.finishFetch(seq, []item{{1, "a"}, {2, "b"}}, ""))
	snap := c.Snapshot()
	assert.Equal(t, Succeeded, snap.Lifecycle)
	assert.Equal(t, []int64{1, 2}, ids(snap.Items))

	seq = c.beginFetch()
	assert.True(t, c.finishFetch(seq, nil, "boom"))
	snap = c.Snapshot()
	assert.Equal(t, Failed, snap.Lifecycle)
	assert.Equal(t, "boom", snap.LastError)
	assert.Equal(t, []int64{1, 2}, ids(snap.Items), "failed fetch keeps previous items")
}

func TestCollection_StaleFetchDiscarded(t *testing.T) {
	var c Collection[item]

	first := c.beginFetch()
	second := c.beginFetch()

	assert.True(t, c.finishFetch(second, []item{{2, "fresh"}}, ""))
	assert.False(t, c.finishFetch(first, []item{{1, "stale"}}, ""))

	snap := c.Snapshot()
	assert.Equal(t, Succeeded, snap.Lifecycle)
	assert.Equal(t, []int64{2}, ids(snap.Items))
}

func TestCollection_StaleErrorDiscarded(t *testing.T) {
	var c Collection[item]

	first := c.beginFetch()
	second := c.beginFetch()
	assert.False(t, c.finishFetch(first, nil, "late failure"))
	assert.Equal(t, Loading, c.Snapshot().Lifecycle)

	assert.True(t, c.finishFetch(second, []item{{1, "a"}}, ""))
	assert.Empty(t, c.Snapshot().LastError)
}

func TestCollection_FetchDropsDuplicateIDs(t *testing.T) {
	var c Collection[item]
	seq := c.beginFetch()
	c.finishFetch(seq, []item{{1, "a"}, {2, "b"}, {1, "a2"}}, "")

	snap := c.Snapshot()
	assert.Equal(t, []int64{1, 2}, ids(snap.Items))
	assert.Equal(t, "a2", snap.Items[0].label)
}

func TestCollection_CRUDLeavesLifecycleAlone(t *testing.T) {
	var c Collection[item]
	c.add(item{1, "a"})
	c.add(item{2, "b"})
	assert.Equal(t, Idle, c.Snapshot().Lifecycle)

	c.add(item{1, "a again"})
	assert.Equal(t, []int64{1, 2}, ids(c.Snapshot().Items))

	assert.True(t, c.replace(item{2, "b2"}))
	got, ok := c.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "b2", got.label)

	assert.Equal(t, 1, c.remove(1))
	assert.Equal(t, []int64{2}, ids(c.Snapshot().Items))
	assert.Equal(t, Idle, c.Snapshot().Lifecycle)
}

func TestCollection_UpdateMissingIsNoop(t *testing.T) {
	var c Collection[item]
	c.add(item{1, "a"})

	before := c.Snapshot().Items
	assert.False(t, c.replace(item{9, "ghost"}))
	assert.Equal(t, before, c.Snapshot().Items)
}

func TestCollection_DeleteMissingIsNoop(t *testing.T) {
	var c Collection[item]
	c.add(item{1, "a"})

	assert.Equal(t, 0, c.remove(42))
	assert.Len(t, c.Snapshot().Items, 1)
}

func TestCollection_ResetInvalidatesFetch(t *testing.T) {
	var c Collection[item]
	c.add(item{1, "a"})
	seq := c.beginFetch()
	c.reset()

	assert.False(t, c.finishFetch(seq, []item{{5, "late"}}, ""))
	snap := c.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, Idle, snap.Lifecycle)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	var c Collection[item]
	c.add(item{1, "a"})

	snap := c.Snapshot()
	snap.Items[0].label = "mutated"

	got, _ := c.Find(1)
	assert.Equal(t, "a", got.label)
}
