package store

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// shardRing picks one of a fixed set of named shards for a key via
// rendezvous (highest random weight) hashing, seeded by xxhash digests.
// Unlike modulo sharding, this keeps most keys on their original shard
// when the shard count changes, though kvflowd never resizes a live
// ring — the property is inherited for free, not relied upon.
type shardRing struct {
	names []string
	ring  *rendezvous.Rendezvous
}

func newShardRing(n int) *shardRing {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	hash := func(s string) uint64 { return xxhash.Sum64String(s) }
	return &shardRing{
		names: names,
		ring:  rendezvous.New(names, hash),
	}
}

// pick returns the shard index for key.
func (r *shardRing) pick(key string) int {
	name := r.ring.Lookup(key)
	idx, err := strconv.Atoi(name)
	if err != nil {
		// Shard names are always produced by newShardRing, so this
		// can only happen if the ring itself is corrupt.
		panic("store: shard ring returned an unrecognized name: " + name)
	}
	return idx
}
