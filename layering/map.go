package layering

import (
	"iter"
	"sort"
)

// Map is an insertion ordered string keyed map. Overwrite never mutates the
// receiver, so a base dataset can be merged with any number of overrides.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// NewMap returns an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// MapFrom builds a Map from entries, ordering keys lexically.
func MapFrom[V any](entries map[string]V) *Map[V] {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	m := &Map[V]{
		keys:   keys,
		values: make(map[string]V, len(entries)),
	}
	for _, key := range keys {
		m.values[key] = entries[key]
	}
	return m
}

// Set stores value under key. New keys are appended to the iteration order.
func (m *Map[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	value, ok := m.values[key]
	if !ok {
		return zero, false
	}
	return value, true
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in iteration order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over key/value pairs in order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// ToMap returns the entries as a plain map. Values are shared, not copied.
func (m *Map[V]) ToMap() map[string]V {
	out := make(map[string]V, m.Len())
	for key, value := range m.All() {
		out[key] = value
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Map[V]) Clone() *Map[V] {
	out := &Map[V]{
		keys:   m.Keys(),
		values: make(map[string]V, m.Len()),
	}
	for key, value := range m.All() {
		out.values[key] = Clone(value)
	}
	return out
}

// MapKeys returns a new map with every key rewritten by fn. When two keys
// collapse into one, the later entry wins and keeps the earlier position.
func (m *Map[V]) MapKeys(fn func(string) string) *Map[V] {
	out := NewMap[V]()
	for key, value := range m.All() {
		out.Set(fn(key), value)
	}
	return out
}

// Overwrite returns a new map holding the receiver's entries with every entry
// of other inserted or merged on top. Keys only present in the receiver are
// preserved. When both sides hold maps the merge recurses, so an override
// record only needs the fields it changes.
func (m *Map[V]) Overwrite(other *Map[V]) *Map[V] {
	out := m.Clone()
	for key, value := range other.All() {
		if existing, ok := out.values[key]; ok {
			out.values[key] = MergeLayers(value, existing)
			continue
		}
		out.Set(key, Clone(value))
	}
	return out
}
