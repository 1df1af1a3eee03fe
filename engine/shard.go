package engine

import "github.com/cespare/xxhash"

// shardOf maps an object's key prefix to one of n shards, so ops for
// different objects can be processed on independent queues while ops
// for the same object always land on the same one.
func shardOf(prefix string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(prefix) % uint64(n))
}
