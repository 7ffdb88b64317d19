package entity

import (
	"slices"

	"github.com/google/uuid"
)

// WrittenEvent is fired after rows of one entity were written or deleted.
// Writes touching several entities nest one WrittenEvent per further entity.
type WrittenEvent struct {
	name        string
	entityName  string
	primaryKeys []PrimaryKeyValues
	payloads    Rows
	errors      []error
	context     ShopContext
	events      NestedEvents
}

// NewWrittenEvent creates the written event of an entity.
func NewWrittenEvent(entityName string, primaryKeys []PrimaryKeyValues, shopContext ShopContext, errs ...error) *WrittenEvent {
	return newWrittenEvent(WrittenEventNameFor(entityName), entityName, primaryKeys, shopContext, errs)
}

// NewDeletedEvent creates the deleted event of an entity.
func NewDeletedEvent(entityName string, primaryKeys []PrimaryKeyValues, shopContext ShopContext, errs ...error) *WrittenEvent {
	return newWrittenEvent(entityName+".deleted", entityName, primaryKeys, shopContext, errs)
}

func newWrittenEvent(
	name string,
	entityName string,
	primaryKeys []PrimaryKeyValues,
	shopContext ShopContext,
	errs []error,
) *WrittenEvent {

	if primaryKeys == nil {
		primaryKeys = []PrimaryKeyValues{}
	}

	return &WrittenEvent{
		name:        name,
		entityName:  entityName,
		primaryKeys: primaryKeys,
		errors:      slices.DeleteFunc(slices.Clone(errs), func(err error) bool { return err == nil }),
		context:     shopContext,
		events:      NestedEvents{},
	}
}

// Name implements NestedEvent.
func (e *WrittenEvent) Name() string { return e.name }

// Context implements NestedEvent.
func (e *WrittenEvent) Context() ShopContext { return e.context }

// Events implements NestedEvent.
func (e *WrittenEvent) Events() NestedEvents { return e.events }

// EntityName returns the name of the written entity.
func (e *WrittenEvent) EntityName() string { return e.entityName }

// PrimaryKeys returns the written primary keys.
func (e *WrittenEvent) PrimaryKeys() []PrimaryKeyValues { return e.primaryKeys }

// Payloads returns the written rows, if they were attached.
func (e *WrittenEvent) Payloads() Rows { return e.payloads }

// Errors returns the errors which occurred while writing.
func (e *WrittenEvent) Errors() []error { return e.errors }

// HasErrors reports whether any errors occurred while writing.
func (e *WrittenEvent) HasErrors() bool { return len(e.errors) > 0 }

// WithPayloads attaches the written rows.
func (e *WrittenEvent) WithPayloads(payloads Rows) *WrittenEvent {
	e.payloads = payloads

	return e
}

// AddEvent nests further events. Nil events are ignored.
func (e *WrittenEvent) AddEvent(events ...NestedEvent) {
	for _, event := range events {
		if event != nil {
			e.events = append(e.events, event)
		}
	}
}

// IDs returns the UUID values of the written primary keys, parsing string values.
// Keys without a UUID value are skipped.
func (e *WrittenEvent) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.primaryKeys))
	for _, pk := range e.primaryKeys {
		for _, value := range pk {
			if id, err := ParseUUID(value); err == nil {
				ids = append(ids, id)
				break
			}
		}
	}

	return ids
}
