package telemetry

import "sync"

// Registry is the concrete Metrics backend: a keyed set of uint64 counters
// and gauges safe for concurrent writers. Snapshot feeds the diagnostics
// endpoint.
type Registry struct {
	mu     sync.RWMutex
	values map[string]uint64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[string]uint64)}
}

// Add increments the counter at key by delta.
func (r *Registry) Add(key string, delta uint64) {
	if r == nil || key == "" {
		return
	}
	r.mu.Lock()
	r.values[key] += delta
	r.mu.Unlock()
}

// Store overwrites the value at key.
func (r *Registry) Store(key string, value uint64) {
	if r == nil || key == "" {
		return
	}
	r.mu.Lock()
	r.values[key] = value
	r.mu.Unlock()
}

// Load returns the current value at key, zero when absent.
func (r *Registry) Load(key string) uint64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[key]
}

// Snapshot copies every key and value.
func (r *Registry) Snapshot() map[string]uint64 {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]uint64, len(r.values))
	for key, value := range r.values {
		snapshot[key] = value
	}
	return snapshot
}

var _ Metrics = (*Registry)(nil)
