// Package store provides the in-memory playlist membership cache used for
// duplicate detection. The Spotify playlist stays the source of truth; this
// cache is best-effort and is reloaded from an authoritative snapshot when it
// goes stale.
package store

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DedupStore is a thread-safe set of playlist track IDs. A Bloom filter
// answers the common "definitely not present" case cheaply; the exact map
// backs it up, and an LRU bounds memory on very large playlists.
type DedupStore struct {
	trackIDs          map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	maxTracks         int
	falsePositiveRate float64
	loadedAt          time.Time
}

// NewDedupStore creates a store bounded to maxTracks entries with the given
// Bloom false positive rate.
func NewDedupStore(maxTracks int, falsePositiveRate float64) *DedupStore {
	lruCache, _ := lru.New[string, struct{}](maxTracks)

	return &DedupStore{
		trackIDs:          make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(maxTracks), falsePositiveRate),
		lru:               lruCache,
		maxTracks:         maxTracks,
		falsePositiveRate: falsePositiveRate,
	}
}

// Has reports whether a track ID is in the cached playlist set.
func (ds *DedupStore) Has(trackID string) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	if !ds.bloom.TestString(trackID) {
		return false
	}

	_, exists := ds.trackIDs[trackID]
	return exists
}

// Add records a track ID, typically right after a successful playlist write,
// so rapid repeat sends are caught before the next authoritative refresh.
func (ds *DedupStore) Add(trackID string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if _, exists := ds.trackIDs[trackID]; exists {
		return
	}

	ds.insert(trackID)
}

// Load replaces the whole set with an authoritative playlist snapshot and
// resets the staleness clock.
func (ds *DedupStore) Load(trackIDs []string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.reset()

	for _, trackID := range trackIDs {
		if trackID == "" {
			continue
		}
		if _, exists := ds.trackIDs[trackID]; exists {
			continue
		}
		ds.insert(trackID)
	}

	ds.loadedAt = time.Now()
}

// Stale reports whether the last authoritative load is older than ttl.
// A store that has never been loaded is always stale.
func (ds *DedupStore) Stale(ttl time.Duration) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	if ds.loadedAt.IsZero() {
		return true
	}
	return time.Since(ds.loadedAt) > ttl
}

// Size returns the number of cached track IDs.
func (ds *DedupStore) Size() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return len(ds.trackIDs)
}

// Clear empties the store and marks it stale.
func (ds *DedupStore) Clear() {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	ds.reset()
}

func (ds *DedupStore) reset() {
	ds.trackIDs = make(map[string]struct{})
	ds.bloom = bloom.NewWithEstimates(uint(ds.maxTracks), ds.falsePositiveRate)
	ds.lru.Purge()
	ds.loadedAt = time.Time{}
}

// insert adds one ID, evicting first when the store is full. Evicting before
// the LRU insert keeps the LRU from silently dropping a key the map still
// holds, which would strand the entry and starve later evictions.
func (ds *DedupStore) insert(trackID string) {
	for len(ds.trackIDs) >= ds.maxTracks {
		if !ds.evictOldest() {
			break
		}
	}

	ds.trackIDs[trackID] = struct{}{}
	ds.bloom.AddString(trackID)
	ds.lru.Add(trackID, struct{}{})
}

// evictOldest removes one entry and reports whether anything was removed.
func (ds *DedupStore) evictOldest() bool {
	oldestKey, _, ok := ds.lru.GetOldest()
	if ok {
		delete(ds.trackIDs, oldestKey)
		ds.lru.Remove(oldestKey)
		return true
	}

	// The LRU is empty but the map is not; drop an arbitrary entry so the
	// caller still makes progress.
	for key := range ds.trackIDs {
		delete(ds.trackIDs, key)
		return true
	}
	return false
}
