package entity

import (
	"errors"
	"fmt"
)

// FieldCollection is an ordered set of fields with lookups by property and storage name.
type FieldCollection struct {
	fields     []Field
	byProperty map[string]Field
	byStorage  map[string]StorageField
}

// NewFieldCollection creates a FieldCollection from the given fields.
// Property names must be unique.
func NewFieldCollection(fields ...Field) (*FieldCollection, error) {
	fc := &FieldCollection{
		byProperty: make(map[string]Field, len(fields)),
		byStorage:  make(map[string]StorageField, len(fields)),
	}

	for _, field := range fields {
		if err := fc.Add(field); err != nil {
			return nil, err
		}
	}

	return fc, nil
}

// Add appends a field, failing if its property name is already taken.
func (fc *FieldCollection) Add(field Field) error {
	if _, exists := fc.byProperty[field.PropertyName()]; exists {
		return errors.Join(ErrDuplicateField, fmt.Errorf("property %q", field.PropertyName()))
	}

	fc.fields = append(fc.fields, field)
	fc.byProperty[field.PropertyName()] = field

	if _, isAssociation := field.(AssociationField); isAssociation {
		return nil
	}

	if sf, ok := field.(StorageField); ok {
		fc.byStorage[sf.StorageName()] = sf
	}

	return nil
}

// Get returns the field with the given property name.
func (fc *FieldCollection) Get(propertyName string) (Field, bool) {
	field, ok := fc.byProperty[propertyName]

	return field, ok
}

// GetByStorageName returns the storage field with the given column name.
func (fc *FieldCollection) GetByStorageName(storageName string) (StorageField, bool) {
	field, ok := fc.byStorage[storageName]

	return field, ok
}

// Elements returns all fields in declaration order.
func (fc *FieldCollection) Elements() []Field {
	return fc.fields
}

// Len returns the number of fields.
func (fc *FieldCollection) Len() int {
	return len(fc.fields)
}

// Filter returns the fields for which keep returns true.
func (fc *FieldCollection) Filter(keep func(Field) bool) []Field {
	filtered := make([]Field, 0, len(fc.fields))
	for _, field := range fc.fields {
		if keep(field) {
			filtered = append(filtered, field)
		}
	}

	return filtered
}

// FilterByFlag returns the fields which have the given flag.
func (fc *FieldCollection) FilterByFlag(flag Flags) []Field {
	return fc.Filter(func(f Field) bool { return f.Flags().Has(flag) })
}

// PrimaryKeys returns the primary key storage fields.
func (fc *FieldCollection) PrimaryKeys() []StorageField {
	keys := make([]StorageField, 0, 1)
	for _, field := range fc.FilterByFlag(PrimaryKey) {
		if sf, ok := field.(StorageField); ok {
			keys = append(keys, sf)
		}
	}

	return keys
}

// StorageFields returns all fields backed by a column, skipping associations.
func (fc *FieldCollection) StorageFields() []StorageField {
	storage := make([]StorageField, 0, len(fc.fields))
	for _, field := range fc.fields {
		if _, isAssociation := field.(AssociationField); isAssociation {
			continue
		}

		if sf, ok := field.(StorageField); ok {
			storage = append(storage, sf)
		}
	}

	return storage
}

// Associations returns all association fields.
func (fc *FieldCollection) Associations() []AssociationField {
	associations := make([]AssociationField, 0)
	for _, field := range fc.fields {
		if af, ok := field.(AssociationField); ok {
			associations = append(associations, af)
		}
	}

	return associations
}

// TranslatedFields returns all translated fields.
func (fc *FieldCollection) TranslatedFields() []*TranslatedField {
	translated := make([]*TranslatedField, 0)
	for _, field := range fc.fields {
		if tf, ok := field.(*TranslatedField); ok {
			translated = append(translated, tf)
		}
	}

	return translated
}
