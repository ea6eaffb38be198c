package event

import (
	"context"
	"slices"
	"sync"
)

// ListenerID identifies a registration for removal.
type ListenerID uint64

// Callback receives a hydrated event record.
type Callback func(ctx context.Context, ev any) error

type registration struct {
	id ListenerID
	cb Callback
}

// Registry holds listeners keyed by event type.
//
// Per-type lists are copy-on-write: writers publish a new slice and never
// modify a published one, so ForEach iterates a consistent snapshot
// without holding the lock.
type Registry struct {
	mu        sync.RWMutex
	nextID    ListenerID
	listeners map[string][]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string][]registration),
	}
}

// Add appends cb to the listeners for eventType.
func (r *Registry) Add(eventType string, cb Callback) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	old := r.listeners[eventType]
	next := make([]registration, len(old), len(old)+1)
	copy(next, old)
	r.listeners[eventType] = append(next, registration{id: r.nextID, cb: cb})
	return r.nextID
}

// Remove deletes a registration. It reports whether id was registered.
func (r *Registry) Remove(eventType string, id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.listeners[eventType]
	i := slices.IndexFunc(old, func(reg registration) bool { return reg.id == id })
	if i < 0 {
		return false
	}
	if len(old) == 1 {
		delete(r.listeners, eventType)
		return true
	}
	next := make([]registration, 0, len(old)-1)
	next = append(next, old[:i]...)
	r.listeners[eventType] = append(next, old[i+1:]...)
	return true
}

// Has reports whether any listener is registered for eventType.
func (r *Registry) Has(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[eventType]) > 0
}

// Len returns the number of listeners for eventType.
func (r *Registry) Len(eventType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[eventType])
}

// ForEach calls fn for every listener of eventType in registration order
// until fn returns false. Registrations made during iteration are not
// observed.
func (r *Registry) ForEach(eventType string, fn func(id ListenerID, cb Callback) bool) {
	r.mu.RLock()
	snapshot := r.listeners[eventType]
	r.mu.RUnlock()

	for _, reg := range snapshot {
		if !fn(reg.id, reg.cb) {
			return
		}
	}
}
