package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LocalStore fixed-capacity, TTL-aware in-process tier for one namespace.
// Eviction is least-recently-used: the workload is read-heavy with skewed
// popularity (a handful of hot keys dominate during an active session), so
// recency beats insertion order.
//
// An expired entry is removed lazily on read and eagerly by PurgeExpired;
// expiry is indistinguishable from "never set".
type LocalStore struct {
	capacity  int
	data      map[string]*list.Element
	lru       *list.List // front = most recently used
	evictions int64
	sizeBytes int64
	mu        sync.Mutex
}

type localEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewLocalStore creates a bounded local store
func NewLocalStore(capacity int) *LocalStore {
	if capacity <= 0 {
		capacity = FallbackCapacity
	}
	return &LocalStore{
		capacity: capacity,
		data:     make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the value and refreshes its recency. Expired entries are
// removed and reported as absent.
func (s *LocalStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.data[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*localEntry)
	if time.Now().After(entry.expiresAt) {
		s.removeElement(elem)
		return nil, false
	}
	s.lru.MoveToFront(elem)
	return entry.value, true
}

// Set stores a value, overwriting any prior entry and resetting its TTL
// clock. When the store is full the least-recently-used entry is evicted.
func (s *LocalStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = FallbackTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.data[key]; ok {
		entry := elem.Value.(*localEntry)
		s.sizeBytes += int64(len(value)) - int64(len(entry.value))
		entry.value = value
		entry.expiresAt = time.Now().Add(ttl)
		s.lru.MoveToFront(elem)
		return
	}

	if s.lru.Len() >= s.capacity {
		if back := s.lru.Back(); back != nil {
			s.removeElement(back)
			s.evictions++
		}
	}

	entry := &localEntry{key: key, value: value, expiresAt: time.Now().Add(ttl)}
	s.data[key] = s.lru.PushFront(entry)
	s.sizeBytes += int64(len(key) + len(value))
}

// Delete removes a key; deleting an absent key is a no-op
func (s *LocalStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.data[key]; ok {
		s.removeElement(elem)
	}
}

// KeysMatching returns every live key containing the substring
func (s *LocalStore) KeysMatching(substring string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var keys []string
	for key, elem := range s.data {
		if !strings.Contains(key, substring) {
			continue
		}
		if now.After(elem.Value.(*localEntry).expiresAt) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// PurgeExpired removes entries whose TTL has elapsed and returns the count.
// Runs on a timer independent of access patterns.
func (s *LocalStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	purged := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*localEntry).expiresAt) {
			s.removeElement(elem)
			purged++
		}
		elem = prev
	}
	return purged
}

// Clear removes every entry
func (s *LocalStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*list.Element)
	s.lru.Init()
	s.sizeBytes = 0
}

// Len returns the current entry count (expired entries not yet purged count)
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Evictions returns the number of capacity evictions since creation
func (s *LocalStore) Evictions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

// ResetEvictions zeroes the eviction counter (rolling stats window)
func (s *LocalStore) ResetEvictions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictions = 0
}

// SizeBytes returns a rough payload footprint estimate
func (s *LocalStore) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeBytes
}

// removeElement unlinks an entry; caller holds the lock
func (s *LocalStore) removeElement(elem *list.Element) {
	entry := elem.Value.(*localEntry)
	s.lru.Remove(elem)
	delete(s.data, entry.key)
	s.sizeBytes -= int64(len(entry.key) + len(entry.value))
}
