package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/loog-project/treediff/internal/store"
)

const (
	cacheSweepEvery   = 10 * time.Second // janitor wake-up
	ttlBase           = 40 * time.Second // cold entry expires after this
	ttlHitBonus       = 4 * time.Second  // each extra read adds this much TTL
	maxTrackedEntries = 10_000           // hard cap, documents can be large
)

// trackerState is the last committed tree of a document.
type trackerState struct {
	tree     any
	rev      store.RevisionID
	lastRead int64 // unix-nsec; atomic
	hitCount uint32
}

// stateCache is a cache of trackerState objects.
type stateCache struct {
	mu     sync.RWMutex
	data   map[string]*trackerState
	stopCh chan struct{}
	once   sync.Once
}

// newStateCache returns a new state cache with a janitor that evicts cold entries.
func newStateCache() *stateCache {
	c := &stateCache{
		data:   make(map[string]*trackerState, 1024),
		stopCh: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// close stops the janitor and clears the cache.
func (c *stateCache) close() {
	c.once.Do(func() { close(c.stopCh) })
	c.mu.Lock()
	for _, e := range c.data {
		e.tree = nil
	}
	c.data = nil
	c.mu.Unlock()
}

// evictCold drops entries not read within their TTL as of [now] and halves
// the hit counters of the rest.
func (c *stateCache) evictCold(now time.Time) {
	c.mu.Lock()
	for k, e := range c.data {
		age := now.Sub(time.Unix(0, atomic.LoadInt64(&e.lastRead)))
		ttl := ttlBase + time.Duration(atomic.LoadUint32(&e.hitCount))*ttlHitBonus
		if age > ttl {
			delete(c.data, k)
		} else {
			// decay hit counter so “old” popularity fades
			if hc := atomic.LoadUint32(&e.hitCount); hc > 0 {
				atomic.StoreUint32(&e.hitCount, hc/2)
			}
		}
	}
	c.mu.Unlock()
}

// janitor evicts cold entries with an O(n) scan every cacheSweepEvery.
func (c *stateCache) janitor() {
	ticker := time.NewTicker(cacheSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictCold(time.Now())
		case <-c.stopCh:
			return
		}
	}
}

// get returns nil on a miss.
func (c *stateCache) get(document string) *trackerState {
	c.mu.RLock()
	entry := c.data[document]
	c.mu.RUnlock()

	if entry == nil {
		return nil
	}

	atomic.AddUint32(&entry.hitCount, 1)
	atomic.StoreInt64(&entry.lastRead, time.Now().UnixNano())
	return entry
}

// set overwrites (or creates) the entry.
func (c *stateCache) set(document string, ts *trackerState) {
	c.mu.Lock()
	if c.data != nil && (len(c.data) < maxTrackedEntries || c.data[document] != nil) {
		c.data[document] = ts
	}
	c.mu.Unlock()
	atomic.StoreInt64(&ts.lastRead, time.Now().UnixNano())
}

// forget drops the entry of [document], e.g. when its commit failed.
func (c *stateCache) forget(document string) {
	c.mu.Lock()
	delete(c.data, document)
	c.mu.Unlock()
}
