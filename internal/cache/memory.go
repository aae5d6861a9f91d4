package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Stats reports memory cache activity
type Stats struct {
	Hits    uint64
	Misses  uint64
	Evicted uint64
	Size    int
}

// Memory is a size-bounded LRU cache with per-entry expiry
type Memory struct {
	entries *lru.Cache[string, memoryEntry]
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	hits    uint64
	misses  uint64
	evicted uint64
}

// NewMemory creates an LRU cache holding at most size entries.
// A zero ttl disables expiry.
func NewMemory(size int, ttl time.Duration) (*Memory, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &Memory{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries.Get(key)
	if !ok {
		m.misses++
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.entries.Remove(key)
		m.misses++
		return nil, false, nil
	}

	m.hits++
	return append([]byte(nil), entry.value...), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}
	if m.entries.Add(key, memoryEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}) {
		m.evicted++
	}
	return nil
}

// Stats returns hit, miss and eviction counters
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Hits:    m.hits,
		Misses:  m.misses,
		Evicted: m.evicted,
		Size:    m.entries.Len(),
	}
}

func (m *Memory) Close() error {
	m.entries.Purge()
	return nil
}
