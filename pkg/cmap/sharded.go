package cmap

import (
	"slices"
	"strings"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the shard count used by New.
const DefaultShardCount = 16

// Map is a string-keyed map split into independently locked shards.
type Map[V any] struct {
	shards []shard[V]
	mask   uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Entry is one key-value pair of a snapshot.
type Entry[V any] struct {
	Key   string
	Value V
}

// New creates a Map with DefaultShardCount shards.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a Map with n shards. n must be a power of two;
// anything else means DefaultShardCount.
func NewWithShards[V any](n int) *Map[V] {
	if n <= 0 || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	m := &Map[V]{
		shards: make([]shard[V], n),
		mask:   uint32(n - 1),
	}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

// ShardIndex maps key onto one of mask+1 stripes. It is stable across
// processes, so other striped structures can share it.
func ShardIndex(key string, mask uint32) uint32 {
	return murmur3.Sum32([]byte(key)) & mask
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return &m.shards[ShardIndex(key, m.mask)]
}

func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map[V]) Set(key string, value V) {
	m.Swap(key, value)
}

// Swap stores value under key and returns the value it replaced, with
// loaded reporting whether there was one.
func (m *Map[V]) Swap(key string, value V) (old V, loaded bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, loaded = s.items[key]
	s.items[key] = value
	return old, loaded
}

// Pop removes key and returns the value it held.
func (m *Map[V]) Pop(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return v, ok
}

func (m *Map[V]) Count() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for each pair until it returns false. fn runs under a
// shard read lock and must not write to the map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns the keys in sorted order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	slices.Sort(keys)
	return keys
}

// Items returns a snapshot sorted by key. The map may change while the
// caller works through it.
func (m *Map[V]) Items() []Entry[V] {
	items := make([]Entry[V], 0, m.Count())
	m.Range(func(k string, v V) bool {
		items = append(items, Entry[V]{Key: k, Value: v})
		return true
	})
	slices.SortFunc(items, func(a, b Entry[V]) int {
		return strings.Compare(a.Key, b.Key)
	})
	return items
}
