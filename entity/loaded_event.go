package entity

import "github.com/google/uuid"

// NestedEventsFunc derives the nested events of a loaded collection.
type NestedEventsFunc[T Identifiable] func(collection Collection[T], shopContext ShopContext) NestedEvents

// LoadedEvent is fired after a collection of entities was hydrated.
type LoadedEvent[T Identifiable] struct {
	name       string
	collection Collection[T]
	context    ShopContext
	nested     NestedEventsFunc[T]
}

// NewLoadedEvent creates a LoadedEvent. nested may be nil for entities without eager associations.
func NewLoadedEvent[T Identifiable](
	name string,
	collection Collection[T],
	shopContext ShopContext,
	nested NestedEventsFunc[T],
) LoadedEvent[T] {

	return LoadedEvent[T]{name: name, collection: collection, context: shopContext, nested: nested}
}

// Name implements NestedEvent.
func (e LoadedEvent[T]) Name() string { return e.name }

// Context implements NestedEvent.
func (e LoadedEvent[T]) Context() ShopContext { return e.context }

// Collection returns the loaded entities.
func (e LoadedEvent[T]) Collection() Collection[T] { return e.collection }

// Events implements NestedEvent.
func (e LoadedEvent[T]) Events() NestedEvents {
	if e.nested == nil {
		return NestedEvents{}
	}

	return e.nested(e.collection, e.context)
}

// SearchResultLoadedEvent is fired after a search returned hydrated entities.
type SearchResultLoadedEvent[T Identifiable] struct {
	name   string
	result SearchResult[T]
}

// NewSearchResultLoadedEvent creates a SearchResultLoadedEvent.
func NewSearchResultLoadedEvent[T Identifiable](name string, result SearchResult[T]) SearchResultLoadedEvent[T] {
	return SearchResultLoadedEvent[T]{name: name, result: result}
}

// Name implements NestedEvent.
func (e SearchResultLoadedEvent[T]) Name() string { return e.name }

// Context implements NestedEvent.
func (e SearchResultLoadedEvent[T]) Context() ShopContext { return e.result.Context() }

// Result returns the search result.
func (e SearchResultLoadedEvent[T]) Result() SearchResult[T] { return e.result }

// Events implements NestedEvent. The loaded entities fire their own basic loaded event.
func (e SearchResultLoadedEvent[T]) Events() NestedEvents { return NestedEvents{} }

// IDSearchResultLoadedEvent is fired after an id search.
type IDSearchResultLoadedEvent struct {
	name   string
	result IDSearchResult
}

// NewIDSearchResultLoadedEvent creates an IDSearchResultLoadedEvent.
func NewIDSearchResultLoadedEvent(name string, result IDSearchResult) IDSearchResultLoadedEvent {
	return IDSearchResultLoadedEvent{name: name, result: result}
}

// Name implements NestedEvent.
func (e IDSearchResultLoadedEvent) Name() string { return e.name }

// Context implements NestedEvent.
func (e IDSearchResultLoadedEvent) Context() ShopContext { return e.result.Context() }

// Result returns the id search result.
func (e IDSearchResultLoadedEvent) Result() IDSearchResult { return e.result }

// IDs returns the found ids.
func (e IDSearchResultLoadedEvent) IDs() []uuid.UUID { return e.result.IDs() }

// Events implements NestedEvent.
func (e IDSearchResultLoadedEvent) Events() NestedEvents { return NestedEvents{} }
