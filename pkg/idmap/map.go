// Package idmap provides a mapping keyed by object identity.
package idmap

import (
	"log/slog"
	"sync"
	"weak"

	"github.com/surgura/id-key-collections/pkg/identity"
	"github.com/surgura/id-key-collections/pkg/liveness"
)

// Map associates values with key objects by identity.
//
// The zero Map is not usable; construct with New or NewWithTracker.
type Map[K any, V any] struct {
	mu      sync.RWMutex
	tracker liveness.Tracker[K]
	logger  *slog.Logger

	entries []entry[K, V] // insertion order, including tombstones
	buckets []int         // head entry index per bucket, -1 when empty
	live    int           // entries not yet tombstoned
	dead    int           // tombstoned entries awaiting rebuild

	c counters
}

// New creates a map that reclaims entries automatically when their key
// objects are destroyed.
func New[K any, V any](opts ...Option) *Map[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var tracker liveness.Tracker[K]
	if cfg.manualReclaim {
		tracker = liveness.NewManual[K]()
	} else {
		tracker = liveness.NewRuntime[K]()
	}
	return newMap[K, V](tracker, cfg)
}

// NewWithTracker creates a map using the given liveness tracker.
func NewWithTracker[K any, V any](tracker liveness.Tracker[K], opts ...Option) *Map[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newMap[K, V](tracker, cfg)
}

func newMap[K any, V any](tracker liveness.Tracker[K], cfg config) *Map[K, V] {
	m := &Map[K, V]{
		tracker: tracker,
		logger:  cfg.logger,
		buckets: emptyBuckets(bucketCountFor(cfg.initialCapacity)),
	}
	if cfg.initialCapacity > 0 {
		m.entries = make([]entry[K, V], 0, cfg.initialCapacity)
	}
	return m
}

// Set registers key if new, minting a token and arming a destruction
// notification, or updates the existing entry's value in place.
//
// Returns ErrInvalidKey for keys that cannot carry an identity (nil).
// Either the entry is fully installed/updated or nothing is mutated.
func (m *Map[K, V]) Set(key *K, value V) error {
	tok, err := identity.Mint(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.lookupLocked(key); idx >= 0 {
		m.entries[idx].val = value
		m.c.updates++
		return nil
	}
	return m.insertNewLocked(tok, key, value)
}

// Get retrieves the value stored for key. The second return value is
// false when key was never registered or has already been reclaimed;
// that is a normal outcome, never an error.
func (m *Map[K, V]) Get(key *K) (V, bool) {
	var zero V
	if key == nil {
		return zero, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.lookupLocked(key)
	if idx < 0 {
		return zero, false
	}
	return m.entries[idx].val, true
}

// GetOrSet returns the existing value for key, or registers the given
// value and returns it. The second return value reports whether the value
// was already present.
func (m *Map[K, V]) GetOrSet(key *K, value V) (V, bool, error) {
	tok, err := identity.Mint(key)
	if err != nil {
		var zero V
		return zero, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.lookupLocked(key); idx >= 0 {
		return m.entries[idx].val, true, nil
	}
	if err := m.insertNewLocked(tok, key, value); err != nil {
		var zero V
		return zero, false, err
	}
	return value, false, nil
}

// Contains reports whether key currently has an entry.
func (m *Map[K, V]) Contains(key *K) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove deletes the entry for key and cancels its destruction
// notification. Removing an unregistered key is a no-op returning false.
func (m *Map[K, V]) Remove(key *K) bool {
	_, ok := m.Pop(key)
	return ok
}

// Pop removes the entry for key and returns its value.
func (m *Map[K, V]) Pop(key *K) (V, bool) {
	var zero V
	if key == nil {
		return zero, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.lookupLocked(key)
	if idx < 0 {
		return zero, false
	}
	val := m.entries[idx].val
	m.entries[idx].reg.Cancel()
	m.removeAtLocked(idx)
	m.c.removes++
	return val, true
}

// Len returns the number of live entries, purging entries whose key
// objects were destroyed but not yet processed.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked()
	return m.live
}

// Clear removes all entries and cancels all outstanding registrations.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if !m.entries[i].dead {
			m.entries[i].reg.Cancel()
		}
	}
	m.entries = nil
	m.buckets = emptyBuckets(DefaultBuckets)
	m.live, m.dead = 0, 0
}

// SupportsAutoReclaim reports whether destroyed keys are reclaimed
// automatically. When false (manual tracking), entries persist until
// explicitly removed.
func (m *Map[K, V]) SupportsAutoReclaim() bool {
	return m.tracker.SupportsAutoReclaim()
}

// Item is one key/value pair yielded by iteration.
type Item[K any, V any] struct {
	Key   *K
	Value V
}

// Range calls fn for each live entry in insertion order. The callback
// returns false to stop iteration.
//
// Each call starts a fresh pass over a snapshot taken under the lock, so
// keys destroyed mid-pass were skipped up front and fn may call back into
// the map. Snapshot keys are strong references; they keep the yielded key
// objects alive for the duration of the pass.
func (m *Map[K, V]) Range(fn func(key *K, value V) bool) {
	for _, it := range m.snapshot() {
		if !fn(it.Key, it.Value) {
			return
		}
	}
}

// Keys returns strong references to all live keys in insertion order.
func (m *Map[K, V]) Keys() []*K {
	items := m.snapshot()
	keys := make([]*K, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}

// Values returns all live values in insertion order.
func (m *Map[K, V]) Values() []V {
	items := m.snapshot()
	values := make([]V, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	return values
}

// Items returns all live key/value pairs in insertion order.
func (m *Map[K, V]) Items() []Item[K, V] {
	return m.snapshot()
}

// snapshot collects the live entries in insertion order, resurrecting
// strong key references so a pass survives concurrent reclamation.
func (m *Map[K, V]) snapshot() []Item[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
	items := make([]Item[K, V], 0, m.live)
	for i := range m.entries {
		e := &m.entries[i]
		if e.dead {
			continue
		}
		k := e.key.Value()
		if k == nil {
			continue // destroyed since the purge above
		}
		items = append(items, Item[K, V]{Key: k, Value: e.val})
	}
	return items
}

// insertNewLocked installs a fresh entry for key under tok.
func (m *Map[K, V]) insertNewLocked(tok identity.Token, key *K, value V) error {
	reg, err := m.tracker.Track(key, func() { m.reclaim(tok) })
	if err != nil {
		return err
	}

	e := entry[K, V]{
		tok: tok,
		key: weak.Make(key),
		val: value,
		reg: reg,
	}
	if !m.tracker.SupportsAutoReclaim() {
		// Without destruction notifications the entry must outlive any
		// caller reference, exactly until explicit removal.
		e.pin = key
	}

	m.growLocked()
	m.insertLocked(e)
	m.c.inserts++
	return nil
}

// reclaim is the destruction notification target. It runs on the
// runtime's cleanup goroutine, so it takes the same write lock as every
// other mutation.
func (m *Map[K, V]) reclaim(tok identity.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.lookupTokenLocked(tok)
	if idx < 0 {
		// Already removed explicitly or lazily purged; losing that race
		// is a no-op, not an error.
		return
	}
	m.removeAtLocked(idx)
	m.c.reclaims++
	m.logger.Debug("reclaimed entry for destroyed key",
		"token", tok.String(),
		"live", m.live,
	)
}
