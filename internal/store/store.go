// Package store implements the concurrency-safe key/value map kvflowd
// serves reads and writes from: a map from key to (value, optional
// expiry) with lazy expiration on read and no background sweep.
//
// The map is split into a fixed number of independently-locked shards
// so that operations on disjoint keys never contend for the same lock.
// Per key, the contract is unchanged from a single global lock: one
// writer or many readers at a time, and an expiry observed on read is
// removed before the read returns.
package store

import (
	"sync"
	"time"
)

// DefaultShardCount is used when a caller asks for a non-positive count.
const DefaultShardCount = 32

// entry is one stored value.
type entry struct {
	value     string
	expiresAt time.Time
	hasExpiry bool
}

func (e entry) expired(now time.Time) bool {
	return e.hasExpiry && !now.Before(e.expiresAt)
}

// shard is one independently-locked partition of the map.
type shard struct {
	mu   sync.RWMutex
	data map[string]entry
}

// Store is the sharded concurrent map.
type Store struct {
	ring   *shardRing
	shards []*shard
	now    func() time.Time
}

// New returns a Store split into n shards. n <= 0 uses DefaultShardCount.
func New(n int) *Store {
	if n <= 0 {
		n = DefaultShardCount
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{data: make(map[string]entry)}
	}
	return &Store{
		ring:   newShardRing(n),
		shards: shards,
		now:    time.Now,
	}
}

func (s *Store) shardFor(key string) *shard {
	return s.shards[s.ring.pick(key)]
}

// Get returns the current value for key and whether it is present. An
// expired entry is removed and reported as missing.
func (s *Store) Get(key string) (string, bool) {
	sh := s.shardFor(key)

	sh.mu.RLock()
	e, ok := sh.data[key]
	now := s.now()
	if !ok {
		sh.mu.RUnlock()
		return "", false
	}
	if !e.expired(now) {
		val := e.value
		sh.mu.RUnlock()
		return val, true
	}
	sh.mu.RUnlock()

	// The reader lock observed an expired entry. Upgrade to the writer
	// lock and recheck: a concurrent write could have raced in between
	// the unlock above and this lock, and must win over our expiry.
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok = sh.data[key]
	if !ok {
		return "", false
	}
	if e.expired(s.now()) {
		delete(sh.data, key)
		return "", false
	}
	return e.value, true
}

// Set inserts value for key, clearing any prior expiry.
func (s *Store) Set(key, value string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data[key] = entry{value: value}
}

// SetEX inserts value for key with an expiry ttl from now. A zero or
// negative ttl expires the entry immediately — the next Get observes it
// as missing and removes it.
func (s *Store) SetEX(key, value string, ttl time.Duration) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
		hasExpiry: true,
	}
}

// Delete removes key if present. Idempotent.
func (s *Store) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.data, key)
}

// LoadRaw inserts an entry bypassing TTL computation, for seeding the
// store from a snapshot where the expiry is already an absolute instant
// rather than a duration from now. expireAtUnixMS == 0 means no expiry.
func (s *Store) LoadRaw(key, value string, expireAtUnixMS int64) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if expireAtUnixMS == 0 {
		sh.data[key] = entry{value: value}
		return
	}
	sh.data[key] = entry{
		value:     value,
		expiresAt: time.UnixMilli(expireAtUnixMS),
		hasExpiry: true,
	}
}

// Len returns the number of entries across all shards, including any
// not-yet-lazily-expired ones. Intended for metrics, not correctness.
func (s *Store) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.data)
		sh.mu.RUnlock()
	}
	return total
}

// ShardCount reports how many shards the store was constructed with.
func (s *Store) ShardCount() int { return len(s.shards) }
