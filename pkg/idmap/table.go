// Package idmap provides a mapping keyed by object identity.
package idmap

import (
	"weak"

	"github.com/surgura/id-key-collections/pkg/identity"
	"github.com/surgura/id-key-collections/pkg/liveness"
)

const (
	// DefaultBuckets is the initial bucket count. Must be a power of 2.
	DefaultBuckets = 16

	// Grow when live entries exceed 3/4 of the bucket count.
	loadFactorNum = 3
	loadFactorDen = 4
)

// entry is one table slot. Entries live in an insertion-ordered slice and
// are chained per bucket through next; removal tombstones the slot until
// the next rebuild.
type entry[K any, V any] struct {
	tok identity.Token
	key weak.Pointer[K]
	val V
	reg *liveness.Registration

	// pin holds the key strongly when the tracker cannot observe
	// destruction, restoring persist-until-removed semantics.
	pin *K

	next int
	dead bool
}

func emptyBuckets(n int) []int {
	b := make([]int, n)
	for i := range b {
		b[i] = -1
	}
	return b
}

// bucketCountFor picks the smallest power-of-2 bucket count that holds
// capacity entries without crossing the load factor threshold.
func bucketCountFor(capacity int) int {
	n := DefaultBuckets
	for capacity*loadFactorDen > n*loadFactorNum {
		n <<= 1
	}
	return n
}

func (m *Map[K, V]) bucketOf(sum uint64) int {
	return int(sum & uint64(len(m.buckets)-1))
}

// lookupLocked finds the live entry for key. Bucket collisions — including
// a dead predecessor at the same recycled address — are resolved by exact
// identity: a tombstone or an entry whose weak reference has gone nil can
// never match a live pointer.
func (m *Map[K, V]) lookupLocked(key *K) int {
	idx := m.buckets[m.bucketOf(identity.HashRaw(identity.RawOf(key)))]
	for idx >= 0 {
		e := &m.entries[idx]
		if !e.dead && e.key.Value() == key {
			return idx
		}
		idx = e.next
	}
	return -1
}

// lookupTokenLocked finds the entry registered under exactly tok.
func (m *Map[K, V]) lookupTokenLocked(tok identity.Token) int {
	idx := m.buckets[m.bucketOf(tok.Sum64())]
	for idx >= 0 {
		e := &m.entries[idx]
		if !e.dead && e.tok == tok {
			return idx
		}
		idx = e.next
	}
	return -1
}

// insertLocked appends e and links it at the head of its bucket chain.
// The entries slice carries insertion order; chain order is irrelevant.
func (m *Map[K, V]) insertLocked(e entry[K, V]) {
	b := m.bucketOf(e.tok.Sum64())
	e.next = m.buckets[b]
	m.entries = append(m.entries, e)
	m.buckets[b] = len(m.entries) - 1
	m.live++
}

// removeAtLocked tombstones the entry at idx and releases everything it
// holds. The slot stays in its chain until the next rebuild.
func (m *Map[K, V]) removeAtLocked(idx int) {
	e := &m.entries[idx]
	var zero V
	e.val = zero
	e.key = weak.Pointer[K]{}
	e.reg = nil
	e.pin = nil
	e.dead = true
	m.live--
	m.dead++
}

// growLocked makes room for one more live entry, doubling the bucket
// count when the load factor threshold is crossed. Tombstone-heavy tables
// are rebuilt at the same size. There is no shrink path.
func (m *Map[K, V]) growLocked() {
	if (m.live+1)*loadFactorDen > len(m.buckets)*loadFactorNum {
		m.rebuildLocked(len(m.buckets) * 2)
		return
	}
	if m.dead > len(m.entries)/2 && m.dead >= DefaultBuckets {
		m.rebuildLocked(len(m.buckets))
	}
}

// rebuildLocked rehashes all live entries into n buckets, dropping
// tombstones and preserving insertion order.
func (m *Map[K, V]) rebuildLocked(n int) {
	old := m.entries
	m.buckets = emptyBuckets(n)
	m.entries = make([]entry[K, V], 0, m.live+1)
	m.live = 0
	m.dead = 0
	for i := range old {
		if old[i].dead {
			continue
		}
		m.insertLocked(old[i])
	}
	m.c.rehashes++
	m.logger.Debug("table rebuilt",
		"buckets", n,
		"live", m.live,
	)
}

// purgeLocked drops entries whose key object has been destroyed but whose
// destruction notification has not been processed yet.
func (m *Map[K, V]) purgeLocked() {
	for i := range m.entries {
		e := &m.entries[i]
		if e.dead || e.key.Value() != nil {
			continue
		}
		e.reg.Cancel()
		m.removeAtLocked(i)
		m.c.purges++
	}
}
