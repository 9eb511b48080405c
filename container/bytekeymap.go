package container

// ByteKeyMap is a typed map keyed on a small integer identifier — component
// ids, module ids and similar small dense keys throughout the engine. It
// wraps a Go map rather than a dense array because component ids are
// registered sparsely and unpredictably ordered, unlike the generation
// counters container.Pool packs densely.
type ByteKeyMap[T any] struct {
	items map[uint16]T
}

// NewByteKeyMap creates an empty ByteKeyMap.
func NewByteKeyMap[T any]() *ByteKeyMap[T] {
	return &ByteKeyMap[T]{items: make(map[uint16]T)}
}

// Get returns the value stored at key, if any.
func (m *ByteKeyMap[T]) Get(key uint16) (T, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Set stores value at key, overwriting any existing entry.
func (m *ByteKeyMap[T]) Set(key uint16, value T) {
	m.items[key] = value
}

// Delete removes key, if present.
func (m *ByteKeyMap[T]) Delete(key uint16) {
	delete(m.items, key)
}

// Len returns the number of entries.
func (m *ByteKeyMap[T]) Len() int {
	return len(m.items)
}

// Keys returns every key currently stored, in unspecified order.
func (m *ByteKeyMap[T]) Keys() []uint16 {
	keys := make([]uint16, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}
