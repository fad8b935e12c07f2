// Package idmap provides a mapping keyed by object identity.
package idmap

// counters accumulates operation totals. All fields are guarded by the
// map's lock; the reclaim callback holds it too.
type counters struct {
	inserts  uint64
	updates  uint64
	removes  uint64
	reclaims uint64
	purges   uint64
	rehashes uint64
}

// Stats is a point-in-time snapshot of store activity.
type Stats struct {
	// Counters since construction.
	Inserts  uint64 // entries registered
	Updates  uint64 // values replaced in place
	Removes  uint64 // explicit removals
	Reclaims uint64 // removals driven by destruction notifications
	Purges   uint64 // removals by lazy purge before a read
	Rehashes uint64 // table rebuilds (growth or compaction)

	// Current table shape.
	Live       int
	Buckets    int
	LoadFactor float64
}

// Stats returns a snapshot of store activity, purging dead entries first
// so Live reflects only keys that are still reachable.
func (m *Map[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
	return Stats{
		Inserts:    m.c.inserts,
		Updates:    m.c.updates,
		Removes:    m.c.removes,
		Reclaims:   m.c.reclaims,
		Purges:     m.c.purges,
		Rehashes:   m.c.rehashes,
		Live:       m.live,
		Buckets:    len(m.buckets),
		LoadFactor: float64(m.live) / float64(len(m.buckets)),
	}
}
