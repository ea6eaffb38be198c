// Package droplog records gateway events that were dropped because their
// data could not be hydrated, so they can be inspected later.
package droplog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store persists drop records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record. An empty ID is filled with a new UUID and a
	// zero DroppedAt with the current time.
	Append(rec Record) error

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(id string) (Record, error)

	// List returns up to limit records, newest first.
	// A limit <= 0 returns every record.
	List(limit int) ([]Record, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Prune removes records dropped before the cutoff and reports how many
	// were removed.
	Prune(before time.Time) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Record describes one dropped event.
type Record struct {
	ID        string
	EventType string
	Shard     int
	Reason    string
	Payload   []byte
	DroppedAt time.Time
}

// Sentinel errors for drop log operations.
var (
	ErrNotFound    = errors.New("drop record not found")
	ErrStoreClosed = errors.New("drop log closed")
)

// normalize fills generated fields and copies the payload so the store
// never retains the caller's slice.
func normalize(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.DroppedAt.IsZero() {
		rec.DroppedAt = time.Now()
	}
	rec.DroppedAt = rec.DroppedAt.UTC()
	if rec.Payload != nil {
		rec.Payload = append([]byte(nil), rec.Payload...)
	}
	return rec
}
