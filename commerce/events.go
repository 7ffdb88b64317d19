package commerce

import (
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// appendLoaded appends the basic loaded event of collection unless it is empty.
func appendLoaded[T entity.Identifiable](
	events entity.NestedEvents,
	entityName string,
	collection entity.Collection[T],
	shopContext entity.ShopContext,
	nested entity.NestedEventsFunc[T],
) entity.NestedEvents {

	if collection.Count() == 0 {
		return events
	}

	return append(events, entity.NewLoadedEvent(basicLoadedEventName(entityName), collection, shopContext, nested))
}

// loadedAssociations collects the many-to-one associations picked by fn which were loaded.
func loadedAssociations[T entity.Identifiable, R entity.Identifiable](
	collection entity.Collection[T],
	fn func(T) *R,
) entity.Collection[R] {

	return entity.FlatMapCollection(collection, func(element T) []R {
		if associated := fn(element); associated != nil {
			return []R{*associated}
		}

		return nil
	})
}

// childCollections merges the one-to-many children picked by fn.
func childCollections[T entity.Identifiable, R entity.Identifiable](
	collection entity.Collection[T],
	fn func(T) entity.Collection[R],
) entity.Collection[R] {

	return entity.FlatMapCollection(collection, func(element T) []R {
		return fn(element).Elements()
	})
}
