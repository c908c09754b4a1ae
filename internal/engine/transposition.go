package engine

import (
	"sync"
	"sync/atomic"
)

// Number of shards for table locking (power of 2 for fast modulo)
const ttShardCount = 256
const ttShardMask = ttShardCount - 1

// TTEntry caches whether the side to move has a capturing move.
type TTEntry struct {
	Key   uint64 // full Zobrist key, side to move included
	Noisy bool
	Set   bool
}

// TranspositionTable remembers the quiet/noisy verdict of positions met during
// capture extensions, where it otherwise costs a full generate-and-apply pass.
// The verdict depends only on the position, so entries stay valid across
// searches and configurations. Sharded locking lets concurrent searches share it.
type TranspositionTable struct {
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	entrySize := uint64(16)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) shardIndex(idx uint64) int {
	return int(idx & ttShardMask)
}

// Probe looks up a position. The second result is false on a miss.
func (tt *TranspositionTable) Probe(hash uint64) (noisy bool, ok bool) {
	tt.probes.Add(1)

	idx := hash & tt.mask
	shard := tt.shardIndex(idx)

	tt.shards[shard].RLock()
	entry := tt.entries[idx]
	tt.shards[shard].RUnlock()

	if entry.Set && entry.Key == hash {
		tt.hits.Add(1)
		return entry.Noisy, true
	}
	return false, false
}

// Store records a verdict, always replacing the slot.
func (tt *TranspositionTable) Store(hash uint64, noisy bool) {
	idx := hash & tt.mask
	shard := tt.shardIndex(idx)

	tt.shards[shard].Lock()
	tt.entries[idx] = TTEntry{Key: hash, Noisy: noisy, Set: true}
	tt.shards[shard].Unlock()
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	clear(tt.entries)
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of the first thousand slots in use.
func (tt *TranspositionTable) HashFull() int {
	sample := uint64(1000)
	if tt.size < sample {
		sample = tt.size
	}
	used := 0
	for i := uint64(0); i < sample; i++ {
		shard := tt.shardIndex(i)
		tt.shards[shard].RLock()
		if tt.entries[i].Set {
			used++
		}
		tt.shards[shard].RUnlock()
	}
	return used * 1000 / int(sample)
}

// HitRate returns the fraction of probes that hit.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes)
}

// Size returns the number of slots.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}
