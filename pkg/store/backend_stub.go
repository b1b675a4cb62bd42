package store

import (
	"context"
	"sync"
)

// BackendStub is an in-memory Backend for tests.
type BackendStub struct {
	mu     sync.RWMutex
	values map[string]string
	getErr error
	setErr error
}

func NewBackendStub() *BackendStub {
	return &BackendStub{values: make(map[string]string)}
}

func (b *BackendStub) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.getErr != nil {
		return "", false, b.getErr
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *BackendStub) Set(ctx context.Context, key string, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.setErr != nil {
		return b.setErr
	}
	b.values[key] = value
	return nil
}

// Corrupt overwrites the raw stored value, bypassing serialization. Used to
// verify the decode-failure fallback.
func (b *BackendStub) Corrupt(key string, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = raw
}

// Raw returns the raw serialized value for assertions.
func (b *BackendStub) Raw(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

func (b *BackendStub) SetGetError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getErr = err
}

func (b *BackendStub) SetSetError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setErr = err
}
