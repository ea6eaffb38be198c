package droplog

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists drop records to SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a drop log at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dropped_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			shard INTEGER NOT NULL,
			reason TEXT NOT NULL,
			payload BLOB,
			dropped_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dropped_events_dropped_at
		ON dropped_events(dropped_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	rec = normalize(rec)
	_, err := s.db.Exec(`
		INSERT INTO dropped_events (id, event_type, shard, reason, payload, dropped_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.EventType, rec.Shard, rec.Reason, rec.Payload, rec.DroppedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("append drop record: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT id, event_type, shard, reason, payload, dropped_at
		FROM dropped_events WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get drop record: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, event_type, shard, reason, payload, dropped_at
		FROM dropped_events
		ORDER BY dropped_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list drop records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drop record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drop records: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM dropped_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count drop records: %w", err)
	}
	return n, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	res, err := s.db.Exec(`DELETE FROM dropped_events WHERE dropped_at < ?`, before.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune drop records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune drop records: %w", err)
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var droppedAt int64
	if err := sc.Scan(&rec.ID, &rec.EventType, &rec.Shard, &rec.Reason, &rec.Payload, &droppedAt); err != nil {
		return Record{}, err
	}
	rec.DroppedAt = time.Unix(0, droppedAt).UTC()
	return rec, nil
}
