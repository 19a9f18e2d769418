package cache

import (
	"sync"
	"testing"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotCache(t *testing.T) {
	cache := NewSnapshotCache()

	// Test initial state
	assert.Nil(t, cache.Get())
	assert.Equal(t, OriginNone, cache.Entry().Origin)

	// Test storing and retrieving
	snapshot := entity.NewRateSnapshot("2024-01-01", map[string]float64{"USD": 1.1})
	cache.Put(snapshot, OriginSource)

	assert.Same(t, snapshot, cache.Get())
	entry := cache.Entry()
	assert.Equal(t, OriginSource, entry.Origin)
	assert.False(t, entry.Timestamp.IsZero())

	// Test replacement
	next := entity.NewRateSnapshot("2024-01-02", map[string]float64{"USD": 1.2})
	cache.Put(next, OriginDegraded)
	assert.Same(t, next, cache.Get())
	assert.Equal(t, OriginDegraded, cache.Entry().Origin)

	// Putting nil clears
	cache.Put(nil, OriginStore)
	assert.Nil(t, cache.Get())
	assert.Equal(t, OriginNone, cache.Entry().Origin)

	// Test clearing
	cache.Put(snapshot, OriginStore)
	cache.Clear()
	assert.Nil(t, cache.Get())
	assert.True(t, cache.Entry().Timestamp.IsZero())
}

func TestSnapshotCacheConcurrentAccess(t *testing.T) {
	cache := NewSnapshotCache()
	snapshot := entity.NewRateSnapshot("2024-01-01", map[string]float64{"USD": 1.1})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.Put(snapshot, OriginSource)
		}()
		go func() {
			defer wg.Done()
			_ = cache.Get()
		}()
	}
	wg.Wait()

	assert.Same(t, snapshot, cache.Get())
}
