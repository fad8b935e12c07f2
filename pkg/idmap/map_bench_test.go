package idmap

import (
	"runtime"
	"testing"
)

func BenchmarkSet(b *testing.B) {
	m := New[node, int](WithInitialCapacity(b.N))
	keys := make([]*node, b.N)
	for i := range keys {
		keys[i] = &node{}
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := m.Set(keys[i], i); err != nil {
			b.Fatal(err)
		}
	}
	runtime.KeepAlive(keys)
}

func BenchmarkGet(b *testing.B) {
	const size = 10000
	m := New[node, int](WithInitialCapacity(size))
	keys := make([]*node, size)
	for i := range keys {
		keys[i] = &node{}
		if err := m.Set(keys[i], i); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, ok := m.Get(keys[i%size]); !ok {
			b.Fatal("missing key")
		}
	}
	runtime.KeepAlive(keys)
}

func BenchmarkSetRemoveChurn(b *testing.B) {
	m := New[node, int]()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		k := &node{}
		if err := m.Set(k, i); err != nil {
			b.Fatal(err)
		}
		if !m.Remove(k) {
			b.Fatal("remove failed")
		}
	}
}
