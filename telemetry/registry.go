package telemetry

import "sync"

// Registry holds listeners that observe every run.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	nextID  int
}

type entry struct {
	id       int
	listener any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry consulted by every run.
var Default = NewRegistry()

// Register adds a listener and returns a function that removes it. Calling
// the returned function more than once is a no-op.
func (r *Registry) Register(l any) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, entry{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Registry) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Listeners returns a snapshot of the registered listeners in
// registration order.
func (r *Registry) Listeners() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.listener
	}
	return out
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Register adds a listener to the Default registry.
func Register(l any) (unregister func()) {
	return Default.Register(l)
}
