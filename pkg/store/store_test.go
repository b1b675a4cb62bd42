package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_GetReturnsDefaultForMissingKey(t *testing.T) {
	s := NewStore(NewBackendStub())

	def := []testItem{{Name: "seed", Count: 1}}
	got, err := Get(context.Background(), s, "items_u1", def)

	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestStore_PutThenGetRoundTrip(t *testing.T) {
	s := NewStore(NewBackendStub())
	ctx := context.Background()

	items := []testItem{{Name: "a", Count: 2}, {Name: "b", Count: 0}}
	require.NoError(t, Put(ctx, s, "items_u1", items))

	got, err := Get(ctx, s, "items_u1", []testItem{})
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestStore_CorruptValueFallsBackToDefault(t *testing.T) {
	backend := NewBackendStub()
	s := NewStore(backend)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "items_u1", []testItem{{Name: "a"}}))
	backend.Corrupt("items_u1", "{not json")

	def := []testItem{{Name: "fallback"}}
	got, err := Get(ctx, s, "items_u1", def)

	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestStore_BackendErrorIsPropagated(t *testing.T) {
	backend := NewBackendStub()
	backend.SetGetError(errors.New("disk on fire"))
	s := NewStore(backend)

	_, err := Get(context.Background(), s, "items_u1", []testItem{})
	assert.Error(t, err)
}

func TestStore_UpdateAppliesFunctionToCurrentValue(t *testing.T) {
	s := NewStore(NewBackendStub())
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, "counter", 40))

	got, err := Update(ctx, s, "counter", 0, func(v int) int { return v + 2 })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	stored, err := Get(ctx, s, "counter", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, stored)
}

func TestStore_UpdateUsesDefaultWhenAbsent(t *testing.T) {
	s := NewStore(NewBackendStub())

	got, err := Update(context.Background(), s, "counter", 10, func(v int) int { return v + 1 })
	require.NoError(t, err)
	assert.Equal(t, 11, got)
}

func TestStore_ConcurrentUpdatesOnOneKeyDoNotLoseWrites(t *testing.T) {
	s := NewStore(NewBackendStub())
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := Update(ctx, s, "counter", 0, func(v int) int { return v + 1 })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Get(ctx, s, "counter", 0)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestCollection_RoundTripAndUpdate(t *testing.T) {
	s := NewStore(NewBackendStub())
	ctx := context.Background()
	c := NewCollection(s, Key("items", "u1"), []testItem{})

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.Update(ctx, func(items []testItem) []testItem {
		return append(items, testItem{Name: "added"})
	})
	require.NoError(t, err)

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "added", got[0].Name)
}
