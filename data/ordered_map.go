/*
 * OrderedMap: generic map that preserves key insertion order.
 *
 * Generalizes the indexable-by-position idea of gospel's Vector
 * (src/gospel/data/vector.go) into a key/value container, backing
 * vobject's Parameters multimap (component C).
 *
 * (c) 2012 Bernd Fix   >Y<
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or (at
 * your option) any later version.
 *
 * This program is distributed in the hope that it will be useful, but
 * WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package data

// OrderedMap is a map[K]V that remembers the order keys were first
// inserted in, so iterating Keys() reproduces insertion order even
// after intervening updates (deletion does remove a key's slot).
type OrderedMap[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		vals: make(map[K]V),
	}
}

// Set stores v under k, appending k to the key order on first use.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Get returns the value stored under k, and whether k is present.
func (m *OrderedMap[K, V]) Get(k K) (v V, ok bool) {
	v, ok = m.vals[k]
	return
}

// Delete removes k, closing the gap in the key order.
func (m *OrderedMap[K, V]) Delete(k K) {
	if _, ok := m.vals[k]; !ok {
		return
	}
	delete(m.vals, k)
	for i, existing := range m.keys {
		if existing == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy; the
// caller may not mutate the map through it.
func (m *OrderedMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys currently stored.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}
