package inmemorycache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/w920801-a11y/climate-try/internal/weather"
)

// SnapshotCacheData is one cached fetch outcome. Exactly one of Snapshot and
// Error is set: failures are cached too, with a shorter TTL, so a broken
// oracle is not hammered by every dashboard refresh.
type SnapshotCacheData struct {
	Snapshot *weather.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type cacheEntry struct {
	data       []byte
	expiration time.Time
}

type Cache interface {
	Get(key string) (*SnapshotCacheData, bool, error)
	Set(key string, data *SnapshotCacheData, ttl time.Duration) error
}

type InMemoryCache struct {
	cache           map[string]cacheEntry
	mutex           sync.Mutex
	cleanupInterval time.Duration
}

func NewInMemoryCacheProvider(cleanupInterval time.Duration) *InMemoryCache {
	provider := &InMemoryCache{
		cache:           make(map[string]cacheEntry),
		cleanupInterval: cleanupInterval,
	}

	go provider.startCleanup()

	return provider
}

func (m *InMemoryCache) Get(key string) (*SnapshotCacheData, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.cache[key]
	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiration) {
		delete(m.cache, key)
		return nil, false, nil
	}

	var data SnapshotCacheData
	if err := json.Unmarshal(entry.data, &data); err != nil {
		return nil, false, err
	}

	return &data, true, nil
}

func (m *InMemoryCache) Set(key string, data *SnapshotCacheData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cache[key] = cacheEntry{
		data:       jsonData,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

func (m *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.mutex.Lock()
		now := time.Now()
		for k, v := range m.cache {
			if now.After(v.expiration) {
				delete(m.cache, k)
			}
		}
		m.mutex.Unlock()
	}
}
