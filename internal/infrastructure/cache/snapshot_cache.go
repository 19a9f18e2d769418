package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
)

// Origin records where the held snapshot came from
type Origin string

const (
	// OriginNone means no snapshot is held
	OriginNone Origin = ""
	// OriginStore means the snapshot was loaded from local storage and verified fresh
	OriginStore Origin = "store"
	// OriginSource means the snapshot was fetched from the remote provider
	OriginSource Origin = "source"
	// OriginDegraded means a stale or unverified local snapshot was kept because no better data was obtainable
	OriginDegraded Origin = "degraded"
)

// Entry represents the held snapshot with its provenance
type Entry struct {
	Snapshot  *entity.RateSnapshot
	Origin    Origin
	Timestamp time.Time
}

// SnapshotCache holds at most one rate snapshot and is safe for concurrent readers
type SnapshotCache struct {
	entry Entry
	mutex sync.RWMutex
}

// NewSnapshotCache creates an empty snapshot cache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns the held snapshot, or nil if none
func (c *SnapshotCache) Get() *entity.RateSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.entry.Snapshot
}

// Entry returns the held snapshot together with its origin and when it was stored
func (c *SnapshotCache) Entry() Entry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.entry
}

// Put replaces the held snapshot. A nil snapshot clears the cache.
func (c *SnapshotCache) Put(snapshot *entity.RateSnapshot, origin Origin) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if snapshot == nil {
		c.entry = Entry{}
		return
	}

	c.entry = Entry{
		Snapshot:  snapshot,
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// Clear drops the held snapshot
func (c *SnapshotCache) Clear() {
	c.Put(nil, OriginNone)
}
