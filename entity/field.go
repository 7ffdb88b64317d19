package entity

// Flags is a bit set of field flags.
type Flags uint8

const (
	// PrimaryKey marks a field as (part of) the primary key.
	PrimaryKey Flags = 1 << iota

	// Required marks a field that must be present when the entity is written.
	Required

	// ReadOnly marks a field which is maintained by the storage and must not be written.
	ReadOnly

	// Searchable marks a field that takes part in free text searches.
	Searchable

	// Inherited marks a field whose value falls back to the parent entity.
	Inherited
)

// Has reports whether all the given flags are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Field describes one property of an entity.
type Field interface {
	// PropertyName is the name used in queries, payloads and hydrated structs.
	PropertyName() string

	// Flags returns the flags of the field.
	Flags() Flags
}

// StorageField is a Field which is backed by a column of the entity table.
type StorageField interface {
	Field

	// StorageName is the column name.
	StorageName() string
}

// AssociationField is a Field which references another entity.
type AssociationField interface {
	Field

	// ReferenceEntity is the name of the referenced entity definition.
	ReferenceEntity() string

	// LoadInBasic reports whether the association is loaded eagerly with the basic struct.
	LoadInBasic() bool
}

type baseField struct {
	propertyName string
	flags        Flags
}

func newBaseField(propertyName string, flags []Flags) baseField {
	f := baseField{propertyName: propertyName}
	for _, flag := range flags {
		f.flags |= flag
	}

	return f
}

func (f baseField) PropertyName() string {
	return f.propertyName
}

func (f baseField) Flags() Flags {
	return f.flags
}

type storageField struct {
	baseField
	storageName string
}

func newStorageField(storageName, propertyName string, flags []Flags) storageField {
	return storageField{
		baseField:   newBaseField(propertyName, flags),
		storageName: storageName,
	}
}

func (f storageField) StorageName() string {
	return f.storageName
}

// IDField is a UUID primary key column.
type IDField struct {
	storageField
}

// NewIDField creates an IDField.
func NewIDField(storageName, propertyName string, flags ...Flags) *IDField {
	return &IDField{storageField: newStorageField(storageName, propertyName, flags)}
}

// FkField is a UUID foreign key column referencing another entity.
type FkField struct {
	storageField
	referenceEntity string
}

// NewFkField creates a FkField referencing the given entity.
func NewFkField(storageName, propertyName, referenceEntity string, flags ...Flags) *FkField {
	return &FkField{
		storageField:    newStorageField(storageName, propertyName, flags),
		referenceEntity: referenceEntity,
	}
}

// ReferenceEntity is the name of the referenced entity definition.
func (f *FkField) ReferenceEntity() string {
	return f.referenceEntity
}

// StringField is a text column.
type StringField struct {
	storageField
}

// NewStringField creates a StringField.
func NewStringField(storageName, propertyName string, flags ...Flags) *StringField {
	return &StringField{storageField: newStorageField(storageName, propertyName, flags)}
}

// IntField is an integer column.
type IntField struct {
	storageField
}

// NewIntField creates an IntField.
func NewIntField(storageName, propertyName string, flags ...Flags) *IntField {
	return &IntField{storageField: newStorageField(storageName, propertyName, flags)}
}

// FloatField is a floating point column.
type FloatField struct {
	storageField
}

// NewFloatField creates a FloatField.
func NewFloatField(storageName, propertyName string, flags ...Flags) *FloatField {
	return &FloatField{storageField: newStorageField(storageName, propertyName, flags)}
}

// PriceField is a fixed point decimal column, hydrated as decimal.Decimal.
type PriceField struct {
	storageField
}

// NewPriceField creates a PriceField.
func NewPriceField(storageName, propertyName string, flags ...Flags) *PriceField {
	return &PriceField{storageField: newStorageField(storageName, propertyName, flags)}
}

// BoolField is a boolean column.
type BoolField struct {
	storageField
}

// NewBoolField creates a BoolField.
func NewBoolField(storageName, propertyName string, flags ...Flags) *BoolField {
	return &BoolField{storageField: newStorageField(storageName, propertyName, flags)}
}

// DateField is a timestamp column.
type DateField struct {
	storageField
}

// NewDateField creates a DateField.
func NewDateField(storageName, propertyName string, flags ...Flags) *DateField {
	return &DateField{storageField: newStorageField(storageName, propertyName, flags)}
}

// ArrayField is a JSON array column. Term and terms queries on it test membership.
type ArrayField struct {
	storageField
}

// NewArrayField creates an ArrayField.
func NewArrayField(storageName, propertyName string, flags ...Flags) *ArrayField {
	return &ArrayField{storageField: newStorageField(storageName, propertyName, flags)}
}

// JSONField is a JSON object column.
type JSONField struct {
	storageField
}

// NewJSONField creates a JSONField.
func NewJSONField(storageName, propertyName string, flags ...Flags) *JSONField {
	return &JSONField{storageField: newStorageField(storageName, propertyName, flags)}
}

// TranslatedField is a property whose value is stored in the translation definition
// under the same property name.
type TranslatedField struct {
	baseField
}

// NewTranslatedField creates a TranslatedField.
func NewTranslatedField(propertyName string, flags ...Flags) *TranslatedField {
	return &TranslatedField{baseField: newBaseField(propertyName, flags)}
}

// ManyToOneAssociationField joins the referenced entity through a local foreign key column.
type ManyToOneAssociationField struct {
	baseField
	storageName     string
	referenceEntity string
	referenceField  string
	loadInBasic     bool
}

// NewManyToOneAssociationField creates a ManyToOneAssociationField.
// storageName is the local foreign key column, the referenced column is "id".
func NewManyToOneAssociationField(
	propertyName string,
	storageName string,
	referenceEntity string,
	loadInBasic bool,
	flags ...Flags,
) *ManyToOneAssociationField {

	return &ManyToOneAssociationField{
		baseField:       newBaseField(propertyName, flags),
		storageName:     storageName,
		referenceEntity: referenceEntity,
		referenceField:  "id",
		loadInBasic:     loadInBasic,
	}
}

// StorageName is the local foreign key column.
func (f *ManyToOneAssociationField) StorageName() string {
	return f.storageName
}

// ReferenceEntity is the name of the referenced entity definition.
func (f *ManyToOneAssociationField) ReferenceEntity() string {
	return f.referenceEntity
}

// ReferenceField is the referenced column.
func (f *ManyToOneAssociationField) ReferenceField() string {
	return f.referenceField
}

// LoadInBasic reports whether the association is joined in basic reads.
func (f *ManyToOneAssociationField) LoadInBasic() bool {
	return f.loadInBasic
}

// OneToManyAssociationField loads all referenced entities whose foreign key points to this entity.
type OneToManyAssociationField struct {
	baseField
	referenceEntity string
	referenceField  string
	localField      string
	loadInBasic     bool
}

// NewOneToManyAssociationField creates a OneToManyAssociationField.
// referenceField is the foreign key column of the referenced table, the local column is "id".
func NewOneToManyAssociationField(
	propertyName string,
	referenceEntity string,
	referenceField string,
	loadInBasic bool,
	flags ...Flags,
) *OneToManyAssociationField {

	return &OneToManyAssociationField{
		baseField:       newBaseField(propertyName, flags),
		referenceEntity: referenceEntity,
		referenceField:  referenceField,
		localField:      "id",
		loadInBasic:     loadInBasic,
	}
}

// ReferenceEntity is the name of the referenced entity definition.
func (f *OneToManyAssociationField) ReferenceEntity() string {
	return f.referenceEntity
}

// ReferenceField is the foreign key column of the referenced table.
func (f *OneToManyAssociationField) ReferenceField() string {
	return f.referenceField
}

// LocalField is the local column the foreign key points to.
func (f *OneToManyAssociationField) LocalField() string {
	return f.localField
}

// LoadInBasic reports whether the association is loaded with the basic struct.
// One-to-many associations are only loaded for detail structs, whatever this says.
func (f *OneToManyAssociationField) LoadInBasic() bool {
	return f.loadInBasic
}

// IsUUIDField reports whether values of the field are UUIDs.
func IsUUIDField(field Field) bool {
	switch field.(type) {
	case *IDField, *FkField:
		return true
	default:
		return false
	}
}
