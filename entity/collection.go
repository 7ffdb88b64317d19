package entity

import (
	"slices"

	"github.com/google/uuid"
)

// Identifiable is implemented by every hydrated entity struct.
type Identifiable interface {
	EntityID() uuid.UUID
}

// Collection is an insertion ordered set of entities keyed by their id.
// The zero value is an empty collection ready to use.
type Collection[T Identifiable] struct {
	elements []T
	index    map[uuid.UUID]int
}

// NewCollection creates a Collection from the given elements, dropping duplicates.
func NewCollection[T Identifiable](elements ...T) Collection[T] {
	c := Collection[T]{}
	c.Add(elements...)

	return c
}

// Add appends elements. An element whose id is already present replaces the existing one.
func (c *Collection[T]) Add(elements ...T) {
	if c.index == nil {
		c.index = make(map[uuid.UUID]int, len(elements))
	}

	for _, element := range elements {
		if i, exists := c.index[element.EntityID()]; exists {
			c.elements[i] = element
			continue
		}

		c.index[element.EntityID()] = len(c.elements)
		c.elements = append(c.elements, element)
	}
}

// Get returns the element with the given id.
func (c Collection[T]) Get(id uuid.UUID) (T, bool) {
	if i, ok := c.index[id]; ok {
		return c.elements[i], true
	}

	var zero T

	return zero, false
}

// Has reports whether an element with the given id exists.
func (c Collection[T]) Has(id uuid.UUID) bool {
	_, ok := c.index[id]

	return ok
}

// IDs returns the ids in insertion order.
func (c Collection[T]) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.elements))
	for _, element := range c.elements {
		ids = append(ids, element.EntityID())
	}

	return ids
}

// Count returns the number of elements.
func (c Collection[T]) Count() int {
	return len(c.elements)
}

// Elements returns the elements in insertion order.
func (c Collection[T]) Elements() []T {
	return slices.Clone(c.elements)
}

// Filter returns a new collection with the elements for which keep returns true.
func (c Collection[T]) Filter(keep func(T) bool) Collection[T] {
	filtered := Collection[T]{}
	for _, element := range c.elements {
		if keep(element) {
			filtered.Add(element)
		}
	}

	return filtered
}

// Merge returns a new collection with the elements of c followed by the new ones of other.
func (c Collection[T]) Merge(other Collection[T]) Collection[T] {
	merged := NewCollection(c.elements...)
	for _, element := range other.elements {
		if !merged.Has(element.EntityID()) {
			merged.Add(element)
		}
	}

	return merged
}

// SortedBy returns a new collection ordered like ids. Unknown ids are skipped,
// elements not listed are dropped.
func (c Collection[T]) SortedBy(ids []uuid.UUID) Collection[T] {
	sorted := Collection[T]{}
	for _, id := range ids {
		if element, ok := c.Get(id); ok {
			sorted.Add(element)
		}
	}

	return sorted
}

// MapCollection maps every element of c with fn, e.g. to collect associated entities.
func MapCollection[T Identifiable, R any](c Collection[T], fn func(T) R) []R {
	mapped := make([]R, 0, c.Count())
	for _, element := range c.elements {
		mapped = append(mapped, fn(element))
	}

	return mapped
}

// FlatMapCollection collects the entities returned by fn for every element into one deduplicated collection.
func FlatMapCollection[T Identifiable, R Identifiable](c Collection[T], fn func(T) []R) Collection[R] {
	flat := Collection[R]{}
	for _, element := range c.elements {
		flat.Add(fn(element)...)
	}

	return flat
}
