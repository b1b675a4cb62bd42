package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Backend is the durable key -> string medium underneath every collection.
// Get returns the stored value and whether the key exists.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Store provides typed, durable value cells on top of a Backend. Every
// read-modify-write cycle for a key is serialized through a per-key mutex, so
// concurrent handlers never interleave updates on the same collection.
type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Key composes a namespaced storage key, e.g. Key("events", userUid).
func Key(kind, owner string) string {
	return kind + "_" + owner
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get reads the value at key, falling back to def when the key was never
// written. A value that fails to decode also falls back to def: collections
// hold non-critical user data and a corrupt slot must never take the caller
// down. Backend I/O failures are still returned as errors.
func Get[V any](ctx context.Context, s *Store, key string, def V) (V, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("could not read key %q: %w", key, err)
	}
	if !found {
		return def, nil
	}
	return decodeOrDefault(key, raw, def), nil
}

// Put serializes v and durably writes it before returning.
func Put[V any](ctx context.Context, s *Store, key string, v V) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode value for key %q: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("could not write key %q: %w", key, err)
	}
	return nil
}

// Update applies fn to the current value (or def when absent/corrupt) and
// persists the result, all under the key's mutex. This is the single critical
// section primitive: a reader never observes the state between a prune and
// the matching re-insert.
func Update[V any](ctx context.Context, s *Store, key string, def V, fn func(V) V) (V, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	current, err := Get(ctx, s, key, def)
	if err != nil {
		return def, err
	}
	next := fn(current)
	if err := Put(ctx, s, key, next); err != nil {
		return def, err
	}
	return next, nil
}

func decodeOrDefault[V any](key, raw string, def V) V {
	var v V
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Warnf("stored value for key %q is not decodable, using default: %v", key, err)
		return def
	}
	return v
}

// Collection binds a Store to one key and default value, giving every entity
// collection the same get / set / update surface.
type Collection[V any] struct {
	store *Store
	key   string
	def   V
}

func NewCollection[V any](store *Store, key string, def V) Collection[V] {
	return Collection[V]{store: store, key: key, def: def}
}

func (c Collection[V]) Get(ctx context.Context) (V, error) {
	return Get(ctx, c.store, c.key, c.def)
}

func (c Collection[V]) Set(ctx context.Context, v V) error {
	l := c.store.keyLock(c.key)
	l.Lock()
	defer l.Unlock()
	return Put(ctx, c.store, c.key, v)
}

func (c Collection[V]) Update(ctx context.Context, fn func(V) V) (V, error) {
	return Update(ctx, c.store, c.key, c.def, fn)
}
