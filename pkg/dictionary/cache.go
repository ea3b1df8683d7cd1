package dictionary

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// cachedLookup remembers both hits and misses.
type cachedLookup struct {
	entry Entry
	found bool
}

// NodeCache keeps recently looked up child records in memory.
//
// Keys are the parent's child offset (4 bytes, big-endian) followed by the
// character, so siblings share a prefix in the trie.
type NodeCache struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	misses      int64
	maxEntries  int
	mu          sync.RWMutex
}

// NewNodeCache returns a cache holding at most maxEntries lookups.
func NewNodeCache(maxEntries int) *NodeCache {
	return &NodeCache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

func cacheKey(parentOffset uint32, char string) patricia.Prefix {
	key := make([]byte, 4+len(char))
	binary.BigEndian.PutUint32(key, parentOffset)
	copy(key[4:], char)
	return patricia.Prefix(key)
}

// Get returns the cached lookup for char under the group at parentOffset.
func (nc *NodeCache) Get(parentOffset uint32, char string) (Entry, bool, bool) {
	key := cacheKey(parentOffset, char)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	item := nc.trie.Get(key)
	if item == nil {
		nc.misses++
		return Entry{}, false, false
	}
	nc.hits++
	nc.accessTime[string(key)] = nc.nextAccessTime()
	cl := item.(cachedLookup)
	return cl.entry, cl.found, true
}

// Put stores the result of a lookup.
func (nc *NodeCache) Put(parentOffset uint32, char string, entry Entry, found bool) {
	key := cacheKey(parentOffset, char)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	if _, exists := nc.accessTime[string(key)]; !exists && len(nc.accessTime) >= nc.maxEntries {
		nc.evictLRU()
	}
	nc.trie.Set(key, cachedLookup{entry: entry, found: found})
	nc.accessTime[string(key)] = nc.nextAccessTime()
}

// Len is the number of cached lookups.
func (nc *NodeCache) Len() int {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	return len(nc.accessTime)
}

// Stats returns cache counters.
func (nc *NodeCache) Stats() map[string]int {
	nc.mu.RLock()
	defer nc.mu.RUnlock()

	return map[string]int{
		"cachedNodes": len(nc.accessTime),
		"maxNodes":    nc.maxEntries,
		"cacheHits":   int(nc.hits),
		"cacheMisses": int(nc.misses),
	}
}

func (nc *NodeCache) nextAccessTime() int64 {
	nc.accessCount++
	return nc.accessCount
}

func (nc *NodeCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range nc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		nc.trie.Delete(patricia.Prefix(oldestKey))
		delete(nc.accessTime, oldestKey)
	}
}
