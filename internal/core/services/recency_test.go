package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

// TestRecencyCache_AddOrdering checks most-recent-first ordering and
// move-to-front deduplication.
func TestRecencyCache_AddOrdering(t *testing.T) {
	cache := NewRecencyCache(newFakeStore(), zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"Chennai", "Bangalore", "Mumbai"} {
		require.NoError(t, cache.Add(ctx, name))
	}

	assert.Equal(t, []string{"Mumbai", "Bangalore", "Chennai"}, cache.Names())

	// Re-adding an existing entry moves it to the front without a
	// duplicate.
	require.NoError(t, cache.Add(ctx, "Bangalore"))

	assert.Equal(t, []string{"Bangalore", "Mumbai", "Chennai"}, cache.Names())
}

// TestRecencyCache_Bounded checks that the sixth distinct entry evicts
// the oldest.
func TestRecencyCache_Bounded(t *testing.T) {
	cache := NewRecencyCache(newFakeStore(), zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		require.NoError(t, cache.Add(ctx, name))
	}

	names := cache.Names()

	assert.Len(t, names, maxRecent)
	assert.Equal(t, []string{"F", "E", "D", "C", "B"}, names)
	assert.NotContains(t, names, "A")
}

// TestRecencyCache_PersistsAcrossInstances checks that a fresh cache
// reloads what a prior one stored.
func TestRecencyCache_PersistsAcrossInstances(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	first := NewRecencyCache(store, zap.NewNop())

	require.NoError(t, first.Add(ctx, "Pune"))
	require.NoError(t, first.Add(ctx, "Delhi"))

	second := NewRecencyCache(store, zap.NewNop())

	require.NoError(t, second.Load(ctx))
	assert.Equal(t, []string{"Delhi", "Pune"}, second.Names())
}

// TestRecencyCache_LoadAbsentKey checks that a never-written store yields
// an empty list without error.
func TestRecencyCache_LoadAbsentKey(t *testing.T) {
	cache := NewRecencyCache(newFakeStore(), zap.NewNop())

	require.NoError(t, cache.Load(context.Background()))
	assert.Empty(t, cache.Names())
}

// TestRecencyCache_LoadCorruptEntry checks that unparseable persisted
// data is discarded instead of failing startup.
func TestRecencyCache_LoadCorruptEntry(t *testing.T) {
	store := newFakeStore()

	require.NoError(t, store.Set(context.Background(), recentKey, "not-json"))

	cache := NewRecencyCache(store, zap.NewNop())

	require.NoError(t, cache.Load(context.Background()))
	assert.Empty(t, cache.Names())
}

// TestRecencyCache_LoadTruncatesOversizedEntry checks that a persisted
// list longer than the cap is trimmed on load.
func TestRecencyCache_LoadTruncatesOversizedEntry(t *testing.T) {
	store := newFakeStore()

	require.NoError(t, store.Set(context.Background(), recentKey, `["A","B","C","D","E","F","G"]`))

	cache := NewRecencyCache(store, zap.NewNop())

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, cache.Names())
}

// TestRecencyCache_NamesReturnsCopy checks that mutating the returned
// slice does not affect the cache.
func TestRecencyCache_NamesReturnsCopy(t *testing.T) {
	cache := NewRecencyCache(newFakeStore(), zap.NewNop())

	require.NoError(t, cache.Add(context.Background(), "Pune"))

	names := cache.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"Pune"}, cache.Names())
}

var _ ports.KeyValueStore = (*fakeStore)(nil)
