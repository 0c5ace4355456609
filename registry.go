package sqlite

import "sync"

// registry hands out stable integer tokens for Go values that must be
// reachable from C callback trampolines. The token travels through the
// engine as the user-data pointer; the value never crosses the boundary.
type registry struct {
	mu   sync.Mutex
	next uintptr
	vals map[uintptr]any
}

func newRegistry() *registry {
	return &registry{next: 1, vals: make(map[uintptr]any)}
}

func (r *registry) register(v any) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.vals[id] = v
	return id
}

func (r *registry) lookup(id uintptr) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vals[id]
}

func (r *registry) unregister(id uintptr) any {
	if id == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.vals[id]
	delete(r.vals, id)
	return v
}
