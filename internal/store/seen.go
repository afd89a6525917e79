// Package store provides duplicate-update suppression using Bloom filters and LRU cache.
package store

import (
	"strconv"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenStore remembers which update ids have already been handled so a
// redelivered update is processed exactly once. The Bloom filter answers
// the common "never seen" case without touching the map.
type SeenStore struct {
	ids               map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	maxIDs            int
	falsePositiveRate float64
}

// NewSeenStore creates a seen-update store bounded to maxIDs entries.
func NewSeenStore(maxIDs int, falsePositiveRate float64) *SeenStore {
	if maxIDs < 0 || maxIDs > int(^uint(0)>>1) {
		panic("maxIDs value out of range for uint conversion")
	}
	bloomFilter := bloom.NewWithEstimates(uint(maxIDs), falsePositiveRate)

	ss := &SeenStore{
		ids:               make(map[string]struct{}),
		bloom:             bloomFilter,
		maxIDs:            maxIDs,
		falsePositiveRate: falsePositiveRate,
	}

	// The eviction callback keeps the map in lockstep with the LRU; it
	// runs inside lru.Add while MarkSeen already holds the mutex.
	lruCache, _ := lru.NewWithEvict[string, struct{}](maxIDs, func(id string, _ struct{}) {
		delete(ss.ids, id)
	})
	ss.lru = lruCache

	return ss
}

// MarkSeen records an update id and reports whether it was new. A false
// return means the id was handled before and the update should be
// dropped.
func (ss *SeenStore) MarkSeen(updateID int64) bool {
	id := strconv.FormatInt(updateID, 10)

	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.bloom.TestString(id) {
		if _, exists := ss.ids[id]; exists {
			return false
		}
	}

	ss.ids[id] = struct{}{}
	ss.bloom.AddString(id)
	ss.lru.Add(id, struct{}{})

	return true
}

// Has checks whether an update id has been recorded.
func (ss *SeenStore) Has(updateID int64) bool {
	id := strconv.FormatInt(updateID, 10)

	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.bloom.TestString(id) {
		return false
	}

	_, exists := ss.ids[id]
	return exists
}

// Size returns the number of update ids currently stored.
func (ss *SeenStore) Size() int {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return len(ss.ids)
}

// Clear removes all update ids from the store.
func (ss *SeenStore) Clear() {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	ss.ids = make(map[string]struct{})
	if ss.maxIDs < 0 || ss.maxIDs > int(^uint(0)>>1) {
		panic("maxIDs value out of range for uint conversion")
	}
	ss.bloom = bloom.NewWithEstimates(uint(ss.maxIDs), ss.falsePositiveRate)
	ss.lru.Purge()
}
