package server

import (
	"sync"
	"time"

	"github.com/mj1618/desktop-focus/internal/session"
)

// SnapshotCache provides a TTL-based cache for coordinator status.
type SnapshotCache struct {
	mu        sync.Mutex
	snapshot  session.Snapshot
	timestamp time.Time
	valid     bool
	ttl       time.Duration
	read      func() session.Snapshot
	now       func() time.Time
}

// NewSnapshotCache creates a new cache. A ttl of 0 disables caching.
func NewSnapshotCache(ttl time.Duration, read func() session.Snapshot) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, read: read, now: time.Now}
}

// Get returns the cached snapshot if within TTL, otherwise reads fresh.
func (c *SnapshotCache) Get() session.Snapshot {
	if c.ttl == 0 {
		return c.read()
	}

	c.mu.Lock()
	if c.valid && c.now().Sub(c.timestamp) < c.ttl {
		snap := c.snapshot
		c.mu.Unlock()
		return snap
	}
	c.mu.Unlock()

	snap := c.read()

	c.mu.Lock()
	c.snapshot, c.timestamp, c.valid = snap, c.now(), true
	c.mu.Unlock()

	return snap
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
