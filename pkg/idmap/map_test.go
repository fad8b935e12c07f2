package idmap

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/surgura/id-key-collections/pkg/identity"
	"github.com/surgura/id-key-collections/pkg/liveness"
)

type node struct {
	Name string
}

// waitFor polls cond while nudging the collector, failing after a deadline.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSetAndGet(t *testing.T) {
	m := New[node, int]()

	a := &node{Name: "a"}
	b := &node{Name: "b"}

	if err := m.Set(a, 100); err != nil {
		t.Fatalf("Set(a): %v", err)
	}
	if err := m.Set(b, 200); err != nil {
		t.Fatalf("Set(b): %v", err)
	}

	val, ok := m.Get(a)
	if !ok || val != 100 {
		t.Errorf("Get(a) = (%d, %v), want (100, true)", val, ok)
	}
	val, ok = m.Get(b)
	if !ok || val != 200 {
		t.Errorf("Get(b) = (%d, %v), want (200, true)", val, ok)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestSet_ValueEqualKeysAreDistinct(t *testing.T) {
	m := New[node, int]()

	a := &node{Name: "same"}
	b := &node{Name: "same"}

	if err := m.Set(a, 1); err != nil {
		t.Fatalf("Set(a): %v", err)
	}
	if err := m.Set(b, 2); err != nil {
		t.Fatalf("Set(b): %v", err)
	}

	if n := m.Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2 (identity keying, not value keying)", n)
	}
	if val, _ := m.Get(a); val != 1 {
		t.Errorf("Get(a) = %d, want 1", val)
	}
	if val, _ := m.Get(b); val != 2 {
		t.Errorf("Get(b) = %d, want 2", val)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestSet_UpdateInPlace(t *testing.T) {
	m := New[node, string]()
	a := &node{Name: "a"}

	if err := m.Set(a, "x"); err != nil {
		t.Fatalf("Set 1: %v", err)
	}
	if err := m.Set(a, "y"); err != nil {
		t.Fatalf("Set 2: %v", err)
	}

	if val, _ := m.Get(a); val != "y" {
		t.Errorf("Get(a) = %q, want %q", val, "y")
	}
	if n := m.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
	runtime.KeepAlive(a)
}

func TestSet_NilKey(t *testing.T) {
	m := New[node, int]()
	if err := m.Set(nil, 1); !errors.Is(err, identity.ErrInvalidKey) {
		t.Fatalf("Set(nil) err = %v, want ErrInvalidKey", err)
	}
	if m.Contains(nil) {
		t.Error("Contains(nil) should be false")
	}
	if m.Remove(nil) {
		t.Error("Remove(nil) should be false")
	}
}

func TestRemove(t *testing.T) {
	m := New[node, int]()
	a := &node{Name: "a"}

	if err := m.Set(a, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if !m.Remove(a) {
		t.Fatal("first Remove should report true")
	}
	if m.Remove(a) {
		t.Fatal("second Remove should report false")
	}
	if _, ok := m.Get(a); ok {
		t.Error("Get after Remove should report not found")
	}
	if m.Contains(a) {
		t.Error("Contains after Remove should report false")
	}
	runtime.KeepAlive(a)
}

func TestPop(t *testing.T) {
	m := New[node, int]()
	a := &node{Name: "a"}

	if err := m.Set(a, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok := m.Pop(a)
	if !ok || val != 7 {
		t.Fatalf("Pop = (%d, %v), want (7, true)", val, ok)
	}
	if _, ok := m.Pop(a); ok {
		t.Fatal("second Pop should report false")
	}
	runtime.KeepAlive(a)
}

func TestGetOrSet(t *testing.T) {
	m := New[node, int]()
	a := &node{Name: "a"}

	val, loaded, err := m.GetOrSet(a, 1)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if loaded || val != 1 {
		t.Fatalf("GetOrSet new = (%d, %v), want (1, false)", val, loaded)
	}

	val, loaded, err = m.GetOrSet(a, 2)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	if !loaded || val != 1 {
		t.Fatalf("GetOrSet existing = (%d, %v), want (1, true)", val, loaded)
	}
	runtime.KeepAlive(a)
}

func TestRange_InsertionOrderAndRestartable(t *testing.T) {
	m := New[node, int]()

	keys := make([]*node, 5)
	for i := range keys {
		keys[i] = &node{Name: fmt.Sprintf("k%d", i)}
		if err := m.Set(keys[i], i); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}

	// Updating an existing key must keep its position.
	if err := m.Set(keys[1], 100); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []int{0, 100, 2, 3, 4}
	for pass := 0; pass < 2; pass++ {
		var got []int
		var gotKeys []*node
		m.Range(func(k *node, v int) bool {
			got = append(got, v)
			gotKeys = append(gotKeys, k)
			return true
		})
		if len(got) != len(want) {
			t.Fatalf("pass %d: yielded %d entries, want %d", pass, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("pass %d: value[%d] = %d, want %d", pass, i, got[i], want[i])
			}
			if gotKeys[i] != keys[i] {
				t.Errorf("pass %d: key[%d] is not the registered object", pass, i)
			}
		}
	}
	runtime.KeepAlive(keys)
}

func TestRange_EarlyStop(t *testing.T) {
	m := New[node, int]()
	keys := make([]*node, 4)
	for i := range keys {
		keys[i] = &node{}
		if err := m.Set(keys[i], i); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	count := 0
	m.Range(func(*node, int) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("Range visited %d entries after early stop, want 2", count)
	}
	runtime.KeepAlive(keys)
}

func TestRange_AfterRemove(t *testing.T) {
	m := New[node, int]()
	a := &node{Name: "a"}
	b := &node{Name: "b"}

	if err := m.Set(a, 1); err != nil {
		t.Fatalf("Set(a): %v", err)
	}
	if err := m.Set(b, 2); err != nil {
		t.Fatalf("Set(b): %v", err)
	}
	if !m.Remove(a) {
		t.Fatal("Remove(a) should report true")
	}

	var got []int
	m.Range(func(k *node, v int) bool {
		if k != b {
			t.Errorf("unexpected key yielded: %v", k)
		}
		got = append(got, v)
		return true
	})
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("Range after remove yielded %v, want [2]", got)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestGrowth_PreservesEntriesAndOrder(t *testing.T) {
	m := New[node, int]()

	const n = 200 // well past the initial 16*0.75 threshold
	keys := make([]*node, n)
	for i := range keys {
		keys[i] = &node{Name: fmt.Sprintf("k%d", i)}
		if err := m.Set(keys[i], i); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}

	if got := m.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}
	s := m.Stats()
	if s.Rehashes == 0 {
		t.Error("expected at least one rehash while growing")
	}
	if s.Buckets <= DefaultBuckets {
		t.Errorf("Buckets = %d, want > %d after growth", s.Buckets, DefaultBuckets)
	}

	for i, k := range keys {
		val, ok := m.Get(k)
		if !ok || val != i {
			t.Fatalf("Get(keys[%d]) = (%d, %v) after rehash, want (%d, true)", i, val, ok, i)
		}
	}

	i := 0
	m.Range(func(_ *node, v int) bool {
		if v != i {
			t.Fatalf("order broken after rehash: got %d at position %d", v, i)
		}
		i++
		return true
	})
	runtime.KeepAlive(keys)
}

func TestClear(t *testing.T) {
	m := New[node, int]()
	keys := make([]*node, 10)
	for i := range keys {
		keys[i] = &node{}
		if err := m.Set(keys[i], i); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	m.Clear()

	if n := m.Len(); n != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", n)
	}
	for _, k := range keys {
		if m.Contains(k) {
			t.Fatal("Clear left an entry behind")
		}
	}
	// The map stays usable after Clear.
	if err := m.Set(keys[0], 42); err != nil {
		t.Fatalf("Set after Clear: %v", err)
	}
	if val, _ := m.Get(keys[0]); val != 42 {
		t.Fatal("Set after Clear did not take")
	}
	runtime.KeepAlive(keys)
}

// fillTransient registers n keys that become unreachable when it returns.
func fillTransient(t *testing.T, m *Map[node, int], n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := m.Set(&node{Name: fmt.Sprintf("t%d", i)}, i); err != nil {
			t.Fatalf("Set transient %d: %v", i, err)
		}
	}
}

func TestReclaim_DestroyedKeysLeaveTheMap(t *testing.T) {
	m := New[node, int]()

	held := make([]*node, 500)
	for i := range held {
		held[i] = &node{Name: fmt.Sprintf("h%d", i)}
		if err := m.Set(held[i], i); err != nil {
			t.Fatalf("Set held %d: %v", i, err)
		}
	}
	fillTransient(t, m, 500)

	// 1000 registered, 500 destroyed: the count must settle at 500 even
	// though the table grew and rehashed along the way.
	waitFor(t, func() bool { return m.Len() == 500 })

	for i, k := range held {
		val, ok := m.Get(k)
		if !ok || val != i {
			t.Fatalf("held key %d lost during reclamation: (%d, %v)", i, val, ok)
		}
	}
	runtime.KeepAlive(held)
}

func TestReclaim_NewObjectsNeverAliasOldEntries(t *testing.T) {
	m := New[node, int]()

	fillTransient(t, m, 100)
	waitFor(t, func() bool { return m.Len() == 0 })

	// Fresh objects, some of which may land on recycled addresses, must
	// never observe the destroyed keys' entries.
	for i := 0; i < 100; i++ {
		fresh := &node{Name: "fresh"}
		if _, ok := m.Get(fresh); ok {
			t.Fatal("fresh object aliased a reclaimed entry")
		}
		if m.Contains(fresh) {
			t.Fatal("fresh object aliased a reclaimed entry")
		}
	}
}

func TestManualReclaim_EntriesPersist(t *testing.T) {
	m := New[node, int](WithManualReclaim())

	if m.SupportsAutoReclaim() {
		t.Fatal("manual map must not report auto-reclaim support")
	}

	fillTransient(t, m, 10)
	for i := 0; i < 10; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}

	// Without destruction tracking the map pins its keys: entries persist
	// until explicitly removed, like any plain mapping.
	if n := m.Len(); n != 10 {
		t.Fatalf("Len() = %d on a manual map, want 10", n)
	}
	s := m.Stats()
	if s.Reclaims != 0 {
		t.Fatalf("Reclaims = %d on a manual map, want 0", s.Reclaims)
	}
	if s.Purges != 0 {
		t.Fatalf("Purges = %d on a manual map, want 0", s.Purges)
	}

	for _, k := range m.Keys() {
		if !m.Remove(k) {
			t.Fatal("Remove of a pinned key should report true")
		}
	}
	if n := m.Len(); n != 0 {
		t.Fatalf("Len() = %d after removing all, want 0", n)
	}
}

func TestNewWithTracker(t *testing.T) {
	m := NewWithTracker[node, int](liveness.NewManual[node]())
	if m.SupportsAutoReclaim() {
		t.Fatal("manual tracker map must not report auto-reclaim support")
	}

	a := &node{}
	if err := m.Set(a, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if val, ok := m.Get(a); !ok || val != 1 {
		t.Fatalf("Get = (%d, %v), want (1, true)", val, ok)
	}
	runtime.KeepAlive(a)
}

func TestKeysValuesItems(t *testing.T) {
	m := New[node, int]()
	keys := make([]*node, 3)
	for i := range keys {
		keys[i] = &node{Name: fmt.Sprintf("k%d", i)}
		if err := m.Set(keys[i], i*10); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	gotKeys := m.Keys()
	if len(gotKeys) != 3 {
		t.Fatalf("Keys() len = %d, want 3", len(gotKeys))
	}
	for i := range keys {
		if gotKeys[i] != keys[i] {
			t.Errorf("Keys()[%d] is not the registered object", i)
		}
	}

	gotVals := m.Values()
	for i, v := range gotVals {
		if v != i*10 {
			t.Errorf("Values()[%d] = %d, want %d", i, v, i*10)
		}
	}

	items := m.Items()
	for i, it := range items {
		if it.Key != keys[i] || it.Value != i*10 {
			t.Errorf("Items()[%d] = (%v, %d), want (keys[%d], %d)", i, it.Key, it.Value, i, i*10)
		}
	}
	runtime.KeepAlive(keys)
}

func TestStats(t *testing.T) {
	m := New[node, int]()
	a := &node{}
	b := &node{}

	if err := m.Set(a, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(a, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(b, 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	m.Remove(b)

	s := m.Stats()
	if s.Inserts != 2 {
		t.Errorf("Inserts = %d, want 2", s.Inserts)
	}
	if s.Updates != 1 {
		t.Errorf("Updates = %d, want 1", s.Updates)
	}
	if s.Removes != 1 {
		t.Errorf("Removes = %d, want 1", s.Removes)
	}
	if s.Live != 1 {
		t.Errorf("Live = %d, want 1", s.Live)
	}
	if s.Buckets != DefaultBuckets {
		t.Errorf("Buckets = %d, want %d", s.Buckets, DefaultBuckets)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestWithInitialCapacity(t *testing.T) {
	m := New[node, int](WithInitialCapacity(1000))

	keys := make([]*node, 1000)
	for i := range keys {
		keys[i] = &node{}
		if err := m.Set(keys[i], i); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	s := m.Stats()
	if s.Rehashes != 0 {
		t.Errorf("Rehashes = %d with pre-sized table, want 0", s.Rehashes)
	}
	if s.Live != 1000 {
		t.Errorf("Live = %d, want 1000", s.Live)
	}
	runtime.KeepAlive(keys)
}

func TestConcurrentAccess(t *testing.T) {
	m := New[node, int]()

	const goroutines = 8
	const perG = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]*node, perG)
			for i := range local {
				local[i] = &node{}
				if err := m.Set(local[i], i); err != nil {
					t.Errorf("Set: %v", err)
					return
				}
			}
			for i, k := range local {
				if val, ok := m.Get(k); !ok || val != i {
					t.Errorf("Get = (%d, %v), want (%d, true)", val, ok, i)
					return
				}
			}
			for _, k := range local {
				if !m.Remove(k) {
					t.Error("Remove should report true")
					return
				}
			}
			runtime.KeepAlive(local)
		}()
	}
	wg.Wait()

	if n := m.Len(); n != 0 {
		t.Fatalf("Len() = %d after all removals, want 0", n)
	}
}
