package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},  // invalid → default
		{-1, DefaultShardCount}, // invalid → default
		{3, DefaultShardCount},  // not power of 2 → default
		{1, 1},
		{2, 2},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func TestShardIndex(t *testing.T) {
	// Stable across calls and processes (murmur3 with a zero seed).
	if ShardIndex("slot1", 15) != ShardIndex("slot1", 15) {
		t.Error("ShardIndex is not deterministic")
	}

	used := make(map[uint32]bool)
	for i := 0; i < 200; i++ {
		idx := ShardIndex(fmt.Sprintf("key-%d", i), 15)
		if idx > 15 {
			t.Fatalf("ShardIndex() = %d, out of range", idx)
		}
		used[idx] = true
	}
	if len(used) < 8 {
		t.Errorf("200 keys hit only %d of 16 shards", len(used))
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)
	m.Set("key1", 150)

	if val, ok := m.Get("key1"); !ok || val != 150 {
		t.Errorf("Get(key1) = (%d, %v), want (150, true)", val, ok)
	}
	if !m.Has("key2") {
		t.Error("Has(key2) = false")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	if _, ok := m.Pop("key2"); !ok {
		t.Error("Pop(key2) should report present")
	}
	if _, ok := m.Pop("missing"); ok {
		t.Error("Pop(missing) should report absent")
	}
	if m.Has("key2") {
		t.Error("key2 should be removed")
	}

	if v, ok := m.Pop("key1"); !ok || v != 150 {
		t.Errorf("Pop(key1) = (%d, %v)", v, ok)
	}
	if _, ok := m.Pop("key1"); ok {
		t.Error("second Pop(key1) should report absent")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestSwap(t *testing.T) {
	m := New[string]()
	if _, loaded := m.Swap("game_settings", "a"); loaded {
		t.Error("first Swap reported a previous value")
	}
	old, loaded := m.Swap("game_settings", "b")
	if !loaded || old != "a" {
		t.Errorf("Swap() = (%q, %v), want (a, true)", old, loaded)
	}
	if v, _ := m.Get("game_settings"); v != "b" {
		t.Errorf("Get() = %q, want b", v)
	}
}

func TestRangeKeysItems(t *testing.T) {
	m := New[int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 45 {
		t.Errorf("Range sum = %d, want 45", sum)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("Range early stop visited %d, want 3", visited)
	}

	keys := m.Keys()
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Keys() not sorted: %v", keys)
	}
	if len(keys) != 10 || keys[0] != "k0" || keys[9] != "k9" {
		t.Errorf("Keys() = %v", keys)
	}

	items := m.Items()
	if len(items) != 10 {
		t.Fatalf("len(Items()) = %d", len(items))
	}
	for i, it := range items {
		if i > 0 && items[i-1].Key >= it.Key {
			t.Errorf("Items() not sorted at %d: %q >= %q", i, items[i-1].Key, it.Key)
		}
		if want := fmt.Sprintf("k%d", it.Value); it.Key != want {
			t.Errorf("item %v has key %s, want %s", it.Value, it.Key, want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 200

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("%d-%d", base, j)
				m.Set(key, j)
				m.Get(key)
				m.Has(key)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = m.Items()
		}
	}()
	wg.Wait()

	if m.Count() != numGoroutines*numOps {
		t.Errorf("Count() = %d, want %d", m.Count(), numGoroutines*numOps)
	}
}
