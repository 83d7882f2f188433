package stream

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/btree"
)

// OrderedMap is a map that iterates in key insertion order. It is the result
// type of GroupingBy and ToMap. Re-putting an existing key keeps its position.
type OrderedMap[K comparable, V any] struct {
	m *linkedhashmap.Map
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{m: linkedhashmap.New()}
}

// Put stores v under k.
func (m *OrderedMap[K, V]) Put(k K, v V) {
	m.m.Put(k, v)
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.m.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int {
	return m.m.Size()
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.m.Size())
	for _, k := range m.m.Keys() {
		keys = append(keys, k.(K))
	}
	return keys
}

// Values returns the values in key insertion order.
func (m *OrderedMap[K, V]) Values() []V {
	values := make([]V, 0, m.m.Size())
	for _, v := range m.m.Values() {
		values = append(values, v.(V))
	}
	return values
}

// Each calls fn for every entry in insertion order.
func (m *OrderedMap[K, V]) Each(fn func(k K, v V)) {
	m.m.Each(func(k, v interface{}) {
		fn(k.(K), v.(V))
	})
}

// Map copies the entries into a plain Go map.
func (m *OrderedMap[K, V]) Map() map[K]V {
	out := make(map[K]V, m.m.Size())
	m.Each(func(k K, v V) { out[k] = v })
	return out
}

func (m *OrderedMap[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	i := 0
	m.Each(func(k K, v V) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v=%v", k, v)
		i++
	})
	b.WriteByte('}')
	return b.String()
}

func mapValues[K comparable, A, R any](in *OrderedMap[K, A], fn func(A) R) *OrderedMap[K, R] {
	out := NewOrderedMap[K, R]()
	in.Each(func(k K, a A) { out.Put(k, fn(a)) })
	return out
}

const sortedMapDegree = 32

type sortedEntry[K cmp.Ordered, V any] struct {
	key   K
	value V
}

// SortedMap is a map that iterates in ascending key order. It is the result
// type of ToSortedMap and GroupingBySorted.
type SortedMap[K cmp.Ordered, V any] struct {
	tree *btree.BTreeG[sortedEntry[K, V]]
}

// NewSortedMap creates an empty SortedMap.
func NewSortedMap[K cmp.Ordered, V any]() *SortedMap[K, V] {
	return &SortedMap[K, V]{
		tree: btree.NewG(sortedMapDegree, func(a, b sortedEntry[K, V]) bool {
			return cmp.Less(a.key, b.key)
		}),
	}
}

// Put stores v under k.
func (m *SortedMap[K, V]) Put(k K, v V) {
	m.tree.ReplaceOrInsert(sortedEntry[K, V]{key: k, value: v})
}

// Get returns the value stored under k.
func (m *SortedMap[K, V]) Get(k K) (V, bool) {
	e, ok := m.tree.Get(sortedEntry[K, V]{key: k})
	return e.value, ok
}

// Len returns the number of keys.
func (m *SortedMap[K, V]) Len() int {
	return m.tree.Len()
}

// Keys returns the keys in ascending order.
func (m *SortedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.tree.Len())
	m.Each(func(k K, _ V) { keys = append(keys, k) })
	return keys
}

// Values returns the values in ascending key order.
func (m *SortedMap[K, V]) Values() []V {
	values := make([]V, 0, m.tree.Len())
	m.Each(func(_ K, v V) { values = append(values, v) })
	return values
}

// Each calls fn for every entry in ascending key order.
func (m *SortedMap[K, V]) Each(fn func(k K, v V)) {
	m.tree.Ascend(func(e sortedEntry[K, V]) bool {
		fn(e.key, e.value)
		return true
	})
}

// Map copies the entries into a plain Go map.
func (m *SortedMap[K, V]) Map() map[K]V {
	out := make(map[K]V, m.tree.Len())
	m.Each(func(k K, v V) { out[k] = v })
	return out
}

func (m *SortedMap[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	i := 0
	m.Each(func(k K, v V) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v=%v", k, v)
		i++
	})
	b.WriteByte('}')
	return b.String()
}
