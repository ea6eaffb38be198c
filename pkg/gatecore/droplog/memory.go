package droplog

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory drop log.
// Data is lost when the process exits.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []Record
	maxRecords int
	closed     bool
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxRecords bounds the store to n records. Appending to a full store
// evicts the oldest record. n <= 0 means unbounded.
func WithMaxRecords(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.maxRecords = n
	}
}

// NewMemoryStore creates an empty in-memory drop log.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if m.maxRecords > 0 && len(m.records) >= m.maxRecords {
		// Records are kept in append order, so the head is the oldest.
		evict := len(m.records) - m.maxRecords + 1
		clear(m.records[:evict])
		m.records = m.records[evict:]
	}
	m.records = append(m.records, normalize(rec))
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}
	for _, rec := range m.records {
		if rec.ID == id {
			return copyRecord(rec), nil
		}
	}
	return Record{}, ErrNotFound
}

// List implements Store.
func (m *MemoryStore) List(limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, copyRecord(rec))
	}
	// Stable keeps append order among equal timestamps, reversed below.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DroppedAt.Before(out[j].DroppedAt)
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.records), nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	kept := m.records[:0]
	for _, rec := range m.records {
		if !rec.DroppedAt.Before(before) {
			kept = append(kept, rec)
		}
	}
	removed := len(m.records) - len(kept)
	m.records = kept
	return removed, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

func copyRecord(rec Record) Record {
	if rec.Payload != nil {
		rec.Payload = append([]byte(nil), rec.Payload...)
	}
	return rec
}
