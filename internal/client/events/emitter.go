// Package events is a tiny synchronous listener registry. Handlers run on
// the emitting goroutine; a panicking handler does not affect the others.
package events

import (
	"sort"
	"sync"
)

type Emitter[E any] struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]func(E)
}

// On registers fn and returns a function that removes it.
func (e *Emitter[E]) On(fn func(E)) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[int]func(E))
	}
	id := e.next
	e.next++
	e.handlers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers, id)
	}
}

// Emit calls every handler in registration order.
func (e *Emitter[E]) Emit(ev E) {
	e.mu.RLock()
	ids := make([]int, 0, len(e.handlers))
	for id := range e.handlers {
		ids = append(ids, id)
	}
	hs := make(map[int]func(E), len(e.handlers))
	for id, h := range e.handlers {
		hs[id] = h
	}
	e.mu.RUnlock()

	sort.Ints(ids)
	for _, id := range ids {
		func() {
			defer func() { _ = recover() }()
			hs[id](ev)
		}()
	}
}
