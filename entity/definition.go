package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Extension adds fields to a definition, e.g. from a plugin.
type Extension interface {
	ExtendFields(fields *FieldCollection) error
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc func(fields *FieldCollection) error

// ExtendFields calls f(fields).
func (f ExtensionFunc) ExtendFields(fields *FieldCollection) error {
	return f(fields)
}

// Definition describes an entity: its table, fields, keys and associations.
type Definition struct {
	name                  string
	fields                *FieldCollection
	translationDefinition string
	parentDefinition      string
}

// DefinitionOption defines a functional option for configuring a Definition.
type DefinitionOption func(*definitionConfig)

type definitionConfig struct {
	translationDefinition string
	parentDefinition      string
	extensions            []Extension
}

// WithTranslationDefinition names the definition holding the translated fields.
func WithTranslationDefinition(name string) DefinitionOption {
	return func(c *definitionConfig) {
		c.translationDefinition = name
	}
}

// WithParentDefinition names the entity a translation definition translates.
func WithParentDefinition(name string) DefinitionOption {
	return func(c *definitionConfig) {
		c.parentDefinition = name
	}
}

// WithExtensions registers extensions which are applied once the base fields are collected.
func WithExtensions(extensions ...Extension) DefinitionOption {
	return func(c *definitionConfig) {
		c.extensions = append(c.extensions, extensions...)
	}
}

// NewDefinition creates a Definition for the entity with the given name, which is also the table name.
func NewDefinition(name string, fields []Field, options ...DefinitionOption) (*Definition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyEntityName
	}

	config := definitionConfig{}
	for _, option := range options {
		option(&config)
	}

	fc, err := NewFieldCollection(fields...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("definition %q", name), err)
	}

	for _, extension := range config.extensions {
		if extendErr := extension.ExtendFields(fc); extendErr != nil {
			return nil, errors.Join(fmt.Errorf("extending definition %q", name), extendErr)
		}
	}

	if len(fc.PrimaryKeys()) == 0 {
		return nil, errors.Join(ErrMissingPrimaryKey, fmt.Errorf("definition %q", name))
	}

	return &Definition{
		name:                  name,
		fields:                fc,
		translationDefinition: config.translationDefinition,
		parentDefinition:      config.parentDefinition,
	}, nil
}

// MustNewDefinition is like NewDefinition but panics on error.
// It is meant for package level definition variables.
func MustNewDefinition(name string, fields []Field, options ...DefinitionOption) *Definition {
	definition, err := NewDefinition(name, fields, options...)
	if err != nil {
		panic(err)
	}

	return definition
}

// Name is the entity name, which is also used as table name and root alias.
func (d *Definition) Name() string {
	return d.name
}

// Fields returns the field collection.
func (d *Definition) Fields() *FieldCollection {
	return d.fields
}

// Field returns the field with the given property name.
func (d *Definition) Field(propertyName string) (Field, bool) {
	return d.fields.Get(propertyName)
}

// PrimaryKeys returns the primary key fields.
func (d *Definition) PrimaryKeys() []StorageField {
	return d.fields.PrimaryKeys()
}

// TranslationDefinition returns the name of the translation definition or "" if there is none.
func (d *Definition) TranslationDefinition() string {
	return d.translationDefinition
}

// ParentDefinition returns the name of the translated entity for translation definitions.
func (d *Definition) ParentDefinition() string {
	return d.parentDefinition
}

// IsTranslation reports whether this is a translation definition.
func (d *Definition) IsTranslation() bool {
	return d.parentDefinition != ""
}

// BasicLoadedEventName is the name of the event fired after basic structs were loaded.
func (d *Definition) BasicLoadedEventName() string {
	return d.name + ".basic.loaded"
}

// DetailLoadedEventName is the name of the event fired after detail structs were loaded.
func (d *Definition) DetailLoadedEventName() string {
	return d.name + ".detail.loaded"
}

// SearchResultLoadedEventName is the name of the event fired after a search.
func (d *Definition) SearchResultLoadedEventName() string {
	return d.name + ".search.result.loaded"
}

// IDSearchResultLoadedEventName is the name of the event fired after an id search.
func (d *Definition) IDSearchResultLoadedEventName() string {
	return d.name + ".id.search.result.loaded"
}

// WrittenEventName is the name of the event fired after entities were written.
func (d *Definition) WrittenEventName() string {
	return WrittenEventNameFor(d.name)
}

// DeletedEventName is the name of the event fired after entities were deleted.
func (d *Definition) DeletedEventName() string {
	return d.name + ".deleted"
}

// WrittenEventNameFor returns the written event name for an entity name.
func WrittenEventNameFor(entityName string) string {
	return entityName + ".written"
}
