package app

import (
	"sync"

	"github.com/existflow/taskboard/internal/logger"
)

// Navigator tracks the current path and a back stack
type Navigator struct {
	mu      sync.Mutex
	stack   []string
	subs    map[int]func(string)
	nextSub int
}

// NewNavigator starts at initial
func NewNavigator(initial string) *Navigator {
	return &Navigator{stack: []string{initial}, subs: make(map[int]func(string))}
}

// Path returns the current path
func (n *Navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// Navigate pushes path
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	n.stack = append(n.stack, path)
	n.mu.Unlock()
	n.notify(path)
}

// Redirect replaces the current path, so Back does not return to it
func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	n.stack[len(n.stack)-1] = path
	n.mu.Unlock()
	logger.Debug("Redirect", logger.F("path", path))
	n.notify(path)
}

// Back pops the current path. Returns false at the bottom of the stack.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	if len(n.stack) < 2 {
		n.mu.Unlock()
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	path := n.stack[len(n.stack)-1]
	n.mu.Unlock()
	n.notify(path)
	return true
}

// Reset drops history and sets path
func (n *Navigator) Reset(path string) {
	n.mu.Lock()
	n.stack = []string{path}
	n.mu.Unlock()
	n.notify(path)
}

// Subscribe calls fn with the new path after every change
func (n *Navigator) Subscribe(fn func(path string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSub++
	id := n.nextSub
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *Navigator) notify(path string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(path)
	}
}
