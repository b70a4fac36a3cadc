package cache

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSetGet(t *testing.T) {
	store := NewLocalStore(10)

	store.Set("k1", []byte("v1"), time.Minute)
	value, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestLocalStoreOverwriteResetsTTL(t *testing.T) {
	store := NewLocalStore(10)

	store.Set("k1", []byte("old"), 30*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	store.Set("k1", []byte("new"), 60*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	// past the original expiry but within the refreshed one
	value, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
	assert.Equal(t, 1, store.Len())
}

func TestLocalStoreTTLExpiry(t *testing.T) {
	store := NewLocalStore(10)

	store.Set("k1", []byte("v1"), 20*time.Millisecond)
	_, ok := store.Get("k1")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = store.Get("k1")
	assert.False(t, ok, "expired entry must read as absent")
	assert.Equal(t, 0, store.Len(), "expired entry is removed on read")
}

func TestLocalStoreLRUEviction(t *testing.T) {
	store := NewLocalStore(3)

	store.Set("a", []byte("1"), time.Minute)
	store.Set("b", []byte("2"), time.Minute)
	store.Set("c", []byte("3"), time.Minute)

	// full: inserting d evicts a, the least recently used
	store.Set("d", []byte("4"), time.Minute)
	_, ok := store.Get("a")
	assert.False(t, ok)

	// reading b refreshes it, so the next eviction takes c
	_, ok = store.Get("b")
	require.True(t, ok)
	store.Set("e", []byte("5"), time.Minute)

	_, ok = store.Get("c")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.True(t, ok)
	_, ok = store.Get("d")
	assert.True(t, ok)
	_, ok = store.Get("e")
	assert.True(t, ok)

	assert.Equal(t, int64(2), store.Evictions())
	assert.Equal(t, 3, store.Len())
}

func TestLocalStoreDeleteAbsentKey(t *testing.T) {
	store := NewLocalStore(10)
	store.Delete("never-set")
	assert.Equal(t, 0, store.Len())
}

func TestLocalStoreKeysMatching(t *testing.T) {
	store := NewLocalStore(10)
	store.Set("event:summer:banner", []byte("1"), time.Minute)
	store.Set("event:summer:board", []byte("2"), time.Minute)
	store.Set("event:winter:banner", []byte("3"), time.Minute)
	store.Set("offer:starter", []byte("4"), 10*time.Millisecond)

	keys := store.KeysMatching("summer")
	assert.ElementsMatch(t, []string{"event:summer:banner", "event:summer:board"}, keys)

	time.Sleep(30 * time.Millisecond)
	keys = store.KeysMatching("starter")
	assert.Empty(t, keys, "expired entries never match")
}

func TestLocalStorePurgeExpired(t *testing.T) {
	store := NewLocalStore(10)
	store.Set("short1", []byte("1"), 10*time.Millisecond)
	store.Set("short2", []byte("2"), 10*time.Millisecond)
	store.Set("long", []byte("3"), time.Minute)

	time.Sleep(30 * time.Millisecond)
	purged := store.PurgeExpired()
	assert.Equal(t, 2, purged)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get("long")
	assert.True(t, ok)
}

func TestLocalStoreClear(t *testing.T) {
	store := NewLocalStore(10)
	store.Set("k1", []byte("v1"), time.Minute)
	store.Set("k2", []byte("v2"), time.Minute)
	require.Equal(t, 2, store.Len())
	require.Greater(t, store.SizeBytes(), int64(0))

	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), store.SizeBytes())
	_, ok := store.Get("k1")
	assert.False(t, ok)
}

func TestLocalStoreSizeBytes(t *testing.T) {
	store := NewLocalStore(10)
	store.Set("key", []byte("value"), time.Minute)
	assert.Equal(t, int64(len("key")+len("value")), store.SizeBytes())

	store.Set("key", []byte("longer-value"), time.Minute)
	assert.Equal(t, int64(len("key")+len("longer-value")), store.SizeBytes())

	store.Delete("key")
	assert.Equal(t, int64(0), store.SizeBytes())
}

func TestLocalStoreResetEvictions(t *testing.T) {
	store := NewLocalStore(1)
	store.Set("a", []byte("1"), time.Minute)
	store.Set("b", []byte("2"), time.Minute)
	require.Equal(t, int64(1), store.Evictions())

	store.ResetEvictions()
	assert.Equal(t, int64(0), store.Evictions())
}

func TestLocalStoreZeroCapacityFallsBack(t *testing.T) {
	store := NewLocalStore(0)
	for i := 0; i < FallbackCapacity+50; i++ {
		store.Set("key-"+strconv.Itoa(i), []byte("v"), time.Minute)
	}
	assert.Equal(t, FallbackCapacity, store.Len())
	assert.Equal(t, int64(50), store.Evictions())
}
