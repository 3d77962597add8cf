// Package store keeps client-side copies of the user's projects and tasks and
// the state of the most recent fetch for each.
package store

import (
	"sync"
)

// Entity is anything with a server-assigned id
type Entity interface {
	EntityID() int64
}

// Lifecycle is the state of a collection's fetch
type Lifecycle int

const (
	Idle Lifecycle = iota
	Loading
	Succeeded
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of a collection at one point in time
type Snapshot[E Entity] struct {
	Items     []E
	Lifecycle Lifecycle
	LastError string
}

// Collection is an ordered list of entities, unique by id. Fetches move the
// lifecycle; create, update and delete only touch items.
type Collection[E Entity] struct {
	mu        sync.Mutex
	items     []E
	lifecycle Lifecycle
	lastError string
	fetchSeq  uint64
}

// Snapshot returns a copy of the collection
func (c *Collection[E]) Snapshot() Snapshot[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]E, len(c.items))
	copy(items, c.items)
	return Snapshot[E]{Items: items, Lifecycle: c.lifecycle, LastError: c.lastError}
}

// Find returns the item with id
func (c *Collection[E]) Find(id int64) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero E
	return zero, false
}

// beginFetch moves to Loading and returns the fetch's sequence number
func (c *Collection[E]) beginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchSeq++
	c.lifecycle = Loading
	return c.fetchSeq
}

// finishFetch applies the result of fetch seq. Results of any fetch other than
// the most recently issued one are dropped; the return reports whether this
// one was applied.
func (c *Collection[E]) finishFetch(seq uint64, items []E, errMsg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		return false
	}
	if errMsg != "" {
		c.lifecycle = Failed
		c.lastError = errMsg
		return true
	}
	c.items = dedupe(items)
	c.lifecycle = Succeeded
	c.lastError = ""
	return true
}

// add appends item, or replaces an existing item with the same id
func (c *Collection[E]) add(item E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(item.EntityID()); i >= 0 {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
}

// replace swaps the item with the same id in place. Returns false when the id
// is not held.
func (c *Collection[E]) replace(item E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(item.EntityID())
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// remove drops every item with id and returns how many were dropped
func (c *Collection[E]) remove(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]E, 0, len(c.items))
	for _, it := range c.items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	return removed
}

// removeWhere drops every item matching fn
func (c *Collection[E]) removeWhere(fn func(E) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, it := range c.items {
		if !fn(it) {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// reset empties the collection. In-flight fetches are invalidated.
func (c *Collection[E]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.lifecycle = Idle
	c.lastError = ""
	c.fetchSeq++
}

func (c *Collection[E]) indexLocked(id int64) int {
	for i, it := range c.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first position of each id with the last value seen for it
func dedupe[E Entity](items []E) []E {
	out := make([]E, 0, len(items))
	pos := make(map[int64]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.EntityID()]; ok {
			out[i] = it
			continue
		}
		pos[it.EntityID()] = len(out)
		out = append(out, it)
	}
	return out
}
