package cache

import (
	"sync"
)

// Store is a concurrent directory of entities keyed by identifier.
// It uses sync.RWMutex for the read-heavy dispatch workload.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*V
}

// NewStore creates an empty store.
func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]*V),
	}
}

// Find returns the entity for key.
// The zero key is never stored, so it is answered without taking the lock.
func (s *Store[K, V]) Find(key K) Ref[V] {
	var zero K
	if key == zero {
		return None[V]()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Some(s.entries[key])
}

// Put stores v under key, replacing any previous entry.
// It reports false and stores nothing for the zero key or a nil value.
func (s *Store[K, V]) Put(key K, v *V) bool {
	var zero K
	if key == zero || v == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = v
	return true
}

// Remove deletes key and returns the removed entity.
func (s *Store[K, V]) Remove(key K) Ref[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return None[V]()
	}
	delete(s.entries, key)
	return Some(v)
}

// RemoveFunc deletes every entry for which match returns true and reports
// how many were removed. match runs with the write lock held and must not
// call back into the store.
func (s *Store[K, V]) RemoveFunc(match func(key K, v *V) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, v := range s.entries {
		if match(key, v) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of stored entities.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Range calls fn for a snapshot of the entries until fn returns false.
// fn runs without the lock held, so it may call back into the store.
func (s *Store[K, V]) Range(fn func(key K, v *V) bool) {
	s.mu.RLock()
	keys := make([]K, 0, len(s.entries))
	vals := make([]*V, 0, len(s.entries))
	for key, v := range s.entries {
		keys = append(keys, key)
		vals = append(vals, v)
	}
	s.mu.RUnlock()

	for i := range keys {
		if !fn(keys[i], vals[i]) {
			return
		}
	}
}
