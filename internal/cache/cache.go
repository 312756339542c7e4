// Package cache is the shared resource cache for server-fetched entities.
// Entries are keyed by resource type + id + query parameters; reads are
// deduplicated so one key has at most one fetch in flight, and mutations
// invalidate declared keys so mounted views refetch before their next read.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// EntryState describes the lifecycle of a cache entry
type EntryState int

const (
	// StateIdle means the entry holds trusted data
	StateIdle EntryState = iota

	// StateFetching means a fetch for this key is in flight
	StateFetching

	// StateStale means the data must be refetched before its next read
	StateStale

	// StateError means the last fetch failed; data, if any, is from the
	// last successful fetch
	StateError
)

var bucketResources = []byte("resources")

// envelope is the persisted form of an entry
type envelope struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

type entry struct {
	data      []byte
	fetchedAt time.Time
	state     EntryState
	lastErr   error
}

type flight struct {
	done chan struct{}
	data []byte
	err  error
}

// Store is the process-wide resource cache. Construct one per application
// (or per test) and pass it explicitly; there is no package-level instance.
// An empty directory gives a memory-only store; otherwise entries are also
// persisted to BoltDB so a restart starts with a warm cache.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*flight
}

// NewStore opens the cache store. dir == "" selects memory-only mode.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:   logger,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "distr.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResources)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

// Close releases the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Read returns the cached data for key, fetching it when the entry is
// missing, stale or errored. Concurrent readers of one key share a single
// in-flight fetch. The fetch is detached from the caller's context: a
// reader navigating away does not cancel it, so the result still lands in
// the cache for later readers.
func (s *Store) Read(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	s.mu.Lock()

	if e, ok := s.entries[key]; ok && e.state == StateIdle {
		data := e.data
		s.mu.Unlock()
		return data, nil
	}

	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		return s.await(ctx, f)
	}

	// Memory miss: a persisted entry from a previous run is still trusted.
	// Stale and errored entries skip this and refetch.
	if _, known := s.entries[key]; !known {
		if e := s.loadPersisted(key); e != nil {
			s.entries[key] = e
			data := e.data
			s.mu.Unlock()
			return data, nil
		}
	}

	f := &flight{done: make(chan struct{})}
	s.inflight[key] = f
	if e, ok := s.entries[key]; ok {
		e.state = StateFetching
	} else {
		s.entries[key] = &entry{state: StateFetching}
	}
	s.mu.Unlock()

	go s.runFetch(context.WithoutCancel(ctx), key, f, fetch)

	return s.await(ctx, f)
}

func (s *Store) runFetch(ctx context.Context, key string, f *flight, fetch func(ctx context.Context) ([]byte, error)) {
	data, err := fetch(ctx)

	s.mu.Lock()
	e := s.entries[key]
	if e == nil {
		// Cleared while fetching (logout); drop the result
		delete(s.inflight, key)
		s.mu.Unlock()
		f.err = err
		f.data = data
		close(f.done)
		return
	}
	if err != nil {
		e.state = StateError
		e.lastErr = err
		s.logger.Debug("cache fetch failed", "key", key, "error", err)
	} else {
		e.state = StateIdle
		e.data = data
		e.fetchedAt = time.Now()
		s.persist(key, e)
	}
	delete(s.inflight, key)
	s.mu.Unlock()

	f.data = data
	f.err = err
	close(f.done)
}

func (s *Store) await(ctx context.Context, f *flight) ([]byte, error) {
	select {
	case <-f.done:
		return f.data, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put seeds the cache with data already in hand (e.g. a mutation response),
// replacing any stale entry for the key.
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = &entry{data: data, fetchedAt: time.Now(), state: StateIdle}
	s.persist(key, s.entries[key])
	s.mu.Unlock()
	return nil
}

// Invalidate marks the given keys stale. Keys with no entry are no-ops.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		if e, ok := s.entries[key]; ok && e.state != StateFetching {
			e.state = StateStale
		}
		s.deletePersisted(key)
	}
	s.mu.Unlock()
}

// InvalidatePrefix marks every key with the given prefix stale
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && e.state != StateFetching {
			e.state = StateStale
		}
	}
	s.deletePersistedPrefix(prefix)
	s.mu.Unlock()
}

// Clear drops every entry, memory and persisted. Used on logout: cached
// entities may be identity-scoped and must not leak across sessions.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketResources); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResources)
		return err
	})
}

// State returns the current state of a key's entry. The second return is
// false when the key has never been populated.
func (s *Store) State(key string) (EntryState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return StateIdle, false
	}
	return e.state, true
}

// FetchedAt returns when the key's data was last fetched successfully
func (s *Store) FetchedAt(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.fetchedAt.IsZero() {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// === Persistence (no-ops in memory-only mode) ===

func (s *Store) persist(key string, e *entry) {
	if s.db == nil {
		return
	}
	env, err := json.Marshal(envelope{Data: e.data, FetchedAt: e.fetchedAt})
	if err != nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResources).Put([]byte(key), env)
	})
}

func (s *Store) loadPersisted(key string) *entry {
	if s.db == nil {
		return nil
	}
	var env *envelope
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResources).Get([]byte(key)); v != nil {
			var e envelope
			if json.Unmarshal(v, &e) == nil {
				env = &e
			}
		}
		return nil
	})
	if env == nil {
		return nil
	}
	return &entry{data: env.Data, fetchedAt: env.FetchedAt, state: StateIdle}
}

func (s *Store) deletePersisted(key string) {
	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResources).Delete([]byte(key))
	})
}

func (s *Store) deletePersistedPrefix(prefix string) {
	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResources)
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadAs reads a typed value through the store, marshaling via JSON
func ReadAs[T any](ctx context.Context, s *Store, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	data, err := s.Read(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, err
	}
	return out, nil
}
