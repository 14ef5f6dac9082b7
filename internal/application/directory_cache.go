package application

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/class-scheduler/internal/persistence"
)

// displayCache keeps recently resolved directory records so that repeated
// enrichment of the same instructors does not hit the directory each time.
// Unknown users are cached too, as misses.
type displayCache struct {
	now     func() time.Time
	ttl     time.Duration
	entries *lru.Cache[string, displayCacheEntry]
}

type displayCacheEntry struct {
	record    persistence.DisplayRecord
	found     bool
	expiresAt time.Time
}

func newDisplayCache(ttl time.Duration, maxEntries int, now func() time.Time) *displayCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	entries, err := lru.New[string, displayCacheEntry](maxEntries)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &displayCache{now: now, ttl: ttl, entries: entries}
}

// Lookup splits ids into the records already cached and the IDs that still
// need a directory query.
func (c *displayCache) Lookup(ids []string) (map[string]persistence.DisplayRecord, []string) {
	records := make(map[string]persistence.DisplayRecord, len(ids))
	if c == nil {
		return records, ids
	}
	now := c.now()
	var missing []string
	for _, id := range ids {
		entry, ok := c.entries.Get(id)
		if !ok || now.After(entry.expiresAt) {
			if ok {
				c.entries.Remove(id)
			}
			missing = append(missing, id)
			continue
		}
		if entry.found {
			records[id] = entry.record
		}
	}
	return records, missing
}

// Store caches the directory answer for queried. IDs absent from found are
// remembered as unknown.
func (c *displayCache) Store(queried []string, found map[string]persistence.DisplayRecord) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)
	for _, id := range queried {
		record, ok := found[id]
		c.entries.Add(id, displayCacheEntry{record: record, found: ok, expiresAt: expiry})
	}
}

// Forget drops a single user, for instance after their record changed.
func (c *displayCache) Forget(id string) {
	if c == nil {
		return
	}
	c.entries.Remove(id)
}

