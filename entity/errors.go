package entity

import (
	"errors"
)

var (
	// ErrEmptyEntityName is returned when a definition is created without an entity name.
	ErrEmptyEntityName = errors.New("empty entity name supplied")

	// ErrUnknownEntity is returned when a definition is not registered.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrDuplicateEntity is returned when a definition is registered twice.
	ErrDuplicateEntity = errors.New("entity is already registered")

	// ErrDuplicateField is returned when two fields of a definition share a property name.
	ErrDuplicateField = errors.New("duplicate field property name")

	// ErrUnknownField is returned when a property path cannot be resolved against a definition.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownAssociation is returned when an association references an unregistered entity.
	ErrUnknownAssociation = errors.New("association references an unknown entity")

	// ErrMissingPrimaryKey is returned when a definition does not flag any field as primary key.
	ErrMissingPrimaryKey = errors.New("definition has no primary key")

	// ErrInvalidUUID is returned when a value for an id or foreign key field is not a valid UUID.
	ErrInvalidUUID = errors.New("value is not a valid uuid")

	// ErrUnsupportedQuery is returned when a query node kind cannot be translated.
	ErrUnsupportedQuery = errors.New("unsupported query")

	// ErrInvalidRangeQuery is returned when a range query has neither a lower nor an upper bound.
	ErrInvalidRangeQuery = errors.New("range query needs at least one bound")

	// ErrEmptyQueryField is returned when a query node is built without a field.
	ErrEmptyQueryField = errors.New("query field must not be empty")

	// ErrInvalidCriteriaJSON is returned when criteria cannot be decoded from JSON.
	ErrInvalidCriteriaJSON = errors.New("criteria json is not valid")
)
