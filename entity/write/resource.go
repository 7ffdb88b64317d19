package write

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

var (
	// ErrValidationFailed is returned when a payload does not satisfy the resource's fields.
	ErrValidationFailed = errors.New("write payload validation failed")

	// ErrInvalidResource is returned when a resource is declared inconsistently.
	ErrInvalidResource = errors.New("invalid write resource")
)

// Mode decides which statement a Command is executed with.
type Mode int

const (
	// Upsert inserts rows and updates them on primary key conflicts.
	Upsert Mode = iota

	// Insert only inserts rows.
	Insert

	// Update only updates existing rows.
	Update
)

// Command is one row to be written to one table.
type Command struct {
	EntityName string
	Table      string
	Mode       Mode

	// PrimaryKey maps primary key property names to values.
	PrimaryKey entity.PrimaryKeyValues

	// PrimaryKeyColumns are the storage names of the primary key, in declaration order.
	PrimaryKeyColumns []string

	// Data maps storage names to coerced values, primary key columns included.
	Data map[string]any
}

type associationKind int

const (
	manyToOne associationKind = iota
	oneToMany
)

type association struct {
	kind      associationKind
	reference string

	// manyToOne: local foreign key property; oneToMany: foreign key column of the referenced table.
	foreignKey string
}

// Resource describes which fields of an entity are writable and how nested payloads are split up.
type Resource struct {
	entityName   string
	table        string
	fields       []Field
	byProperty   map[string]Field
	writeOrder   []string
	associations map[string]association
	translated   map[string]bool
	translation  string
	registry     *entity.Registry
	validate     *validator.Validate
}

// NewResource declares a resource by hand. writeOrder lists the entity names written together
// with this resource; it defaults to the resource's own entity.
func NewResource(entityName, table string, fields []Field, writeOrder []string) (*Resource, error) {
	if entityName == "" || table == "" {
		return nil, errors.Join(ErrInvalidResource, entity.ErrEmptyEntityName)
	}

	if len(writeOrder) == 0 {
		writeOrder = []string{entityName}
	}

	r := &Resource{
		entityName:   entityName,
		table:        table,
		byProperty:   make(map[string]Field, len(fields)),
		writeOrder:   slices.Clone(writeOrder),
		associations: make(map[string]association),
		translated:   make(map[string]bool),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}

	for _, field := range fields {
		if _, exists := r.byProperty[field.PropertyName]; exists {
			return nil, errors.Join(ErrInvalidResource, entity.ErrDuplicateField, fmt.Errorf("property %q", field.PropertyName))
		}

		r.fields = append(r.fields, field)
		r.byProperty[field.PropertyName] = field
	}

	if len(r.primaryKeyFields()) == 0 {
		return nil, errors.Join(ErrInvalidResource, entity.ErrMissingPrimaryKey, fmt.Errorf("resource %q", entityName))
	}

	return r, nil
}

// FromDefinition derives the resource of a definition. Associations and translated fields
// become nested payloads resolved through the registry.
func FromDefinition(definition *entity.Definition, registry *entity.Registry) (*Resource, error) {
	fields := make([]Field, 0, definition.Fields().Len())
	before := make([]string, 0)
	after := make([]string, 0)
	associations := make(map[string]association)
	translated := make(map[string]bool)

	for _, field := range definition.Fields().Elements() {
		switch f := field.(type) {
		case *entity.ManyToOneAssociationField:
			fk, ok := definition.Fields().GetByStorageName(f.StorageName())
			if !ok {
				return nil, errors.Join(ErrInvalidResource, fmt.Errorf("no foreign key column %q for %q", f.StorageName(), f.PropertyName()))
			}

			associations[f.PropertyName()] = association{kind: manyToOne, reference: f.ReferenceEntity(), foreignKey: fk.PropertyName()}
			before = appendUnique(before, f.ReferenceEntity())

		case *entity.OneToManyAssociationField:
			associations[f.PropertyName()] = association{kind: oneToMany, reference: f.ReferenceEntity(), foreignKey: f.ReferenceField()}
			after = appendUnique(after, f.ReferenceEntity())

		case *entity.TranslatedField:
			translated[f.PropertyName()] = true

		case entity.StorageField:
			fields = append(fields, NewField(f.StorageName(), f.PropertyName(), kindOf(f), f.Flags()))
		}
	}

	writeOrder := slices.Concat(before, []string{definition.Name()})
	if len(translated) > 0 {
		writeOrder = append(writeOrder, definition.TranslationDefinition())
	}

	writeOrder = slices.Concat(writeOrder, after)

	r, err := NewResource(definition.Name(), definition.Name(), fields, writeOrder)
	if err != nil {
		return nil, err
	}

	r.associations = associations
	r.translated = translated
	r.translation = definition.TranslationDefinition()
	r.registry = registry

	return r, nil
}

func kindOf(field entity.StorageField) Kind {
	switch field.(type) {
	case *entity.IDField, *entity.FkField:
		return KindUUID
	case *entity.IntField:
		return KindInt
	case *entity.FloatField:
		return KindFloat
	case *entity.PriceField:
		return KindPrice
	case *entity.BoolField:
		return KindBool
	case *entity.DateField:
		return KindDate
	case *entity.ArrayField:
		return KindArray
	case *entity.JSONField:
		return KindJSON
	default:
		return KindString
	}
}

// EntityName returns the entity name.
func (r *Resource) EntityName() string { return r.entityName }

// Table returns the table name.
func (r *Resource) Table() string { return r.table }

// Fields returns the writable fields.
func (r *Resource) Fields() []Field { return r.fields }

// WriteOrder returns the entity names written together with this resource, parents first.
func (r *Resource) WriteOrder() []string { return r.writeOrder }

// Validate checks the payload against the fields: required fields must be present on inserts,
// read-only fields must not be set, values must match their kind and rules and unknown
// properties are rejected. Association values must be an object (many-to-one) or a list of
// objects (one-to-many), their contents and translation payloads are validated by Extract.
func (r *Resource) Validate(payload entity.Row, mode Mode) error {
	_, err := r.coerce(payload, mode)

	return err
}

func (r *Resource) coerce(payload entity.Row, mode Mode) (map[string]any, error) {
	data := make(map[string]any, len(payload))
	fieldErrs := make([]error, 0)

	for _, property := range slices.Sorted(maps.Keys(payload)) {
		if assoc, isAssociation := r.associations[property]; isAssociation {
			if err := assoc.checkShape(property, payload[property]); err != nil {
				fieldErrs = append(fieldErrs, err)
			}

			continue
		}

		if r.translated[property] {
			continue
		}

		field, ok := r.byProperty[property]
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Property: property, Reason: "is not writable"})
			continue
		}

		if field.Flags.Has(entity.ReadOnly) {
			fieldErrs = append(fieldErrs, FieldError{Property: property, Reason: "is read only"})
			continue
		}

		value, err := field.coerce(r.validate, payload[property])
		if err != nil {
			fieldErrs = append(fieldErrs, err)
			continue
		}

		if value == nil && field.Flags.Has(entity.Required) {
			fieldErrs = append(fieldErrs, FieldError{Property: property, Reason: "must not be null"})
			continue
		}

		data[field.StorageName] = value
	}

	for _, field := range r.fields {
		if _, present := payload[field.PropertyName]; present {
			continue
		}

		isPrimaryKey := field.Flags.Has(entity.PrimaryKey)

		switch {
		case mode == Update && isPrimaryKey:
			fieldErrs = append(fieldErrs, FieldError{Property: field.PropertyName, Reason: "is required"})
		case mode == Update, isPrimaryKey && field.Kind == KindUUID:
			continue
		case field.Flags.Has(entity.Required):
			fieldErrs = append(fieldErrs, FieldError{Property: field.PropertyName, Reason: "is required"})
		}
	}

	if len(fieldErrs) > 0 {
		return nil, errors.Join(append([]error{ErrValidationFailed, fmt.Errorf("resource %q", r.entityName)}, fieldErrs...)...)
	}

	return data, nil
}

// Extract validates the payload and splits it into commands in write order: rows of
// many-to-one associations first, then the row itself, its translation and finally the rows
// of one-to-many associations. Missing uuid primary keys are generated and foreign keys filled.
func (r *Resource) Extract(payload entity.Row, mode Mode, shopContext entity.ShopContext) ([]Command, error) {
	_, commands, err := r.extract(payload, mode, shopContext)

	return commands, err
}

// ExtractAll extracts several payloads.
func (r *Resource) ExtractAll(payloads entity.Rows, mode Mode, shopContext entity.ShopContext) ([]Command, error) {
	commands := make([]Command, 0, len(payloads))

	for _, payload := range payloads {
		extracted, err := r.Extract(payload, mode, shopContext)
		if err != nil {
			return nil, err
		}

		commands = append(commands, extracted...)
	}

	return commands, nil
}

func (r *Resource) extract(payload entity.Row, mode Mode, shopContext entity.ShopContext) (entity.PrimaryKeyValues, []Command, error) {
	payload = maps.Clone(payload)
	if payload == nil {
		payload = entity.Row{}
	}

	before := make([]Command, 0)

	for _, property := range slices.Sorted(maps.Keys(r.associations)) {
		assoc := r.associations[property]
		nested, ok := payload[property].(map[string]any)

		if assoc.kind != manyToOne || !ok {
			continue
		}

		reference, err := r.referenceResource(assoc.reference)
		if err != nil {
			return nil, nil, err
		}

		nestedPK, nestedCommands, err := reference.extract(nested, Upsert, shopContext)
		if err != nil {
			return nil, nil, errors.Join(err, fmt.Errorf("nested %q", property))
		}

		before = append(before, nestedCommands...)
		payload[assoc.foreignKey] = firstValue(nestedPK)
	}

	if mode != Update {
		for _, field := range r.primaryKeyFields() {
			if field.Kind == KindUUID && payload[field.PropertyName] == nil {
				payload[field.PropertyName] = uuid.New()
			}
		}
	}

	data, err := r.coerce(payload, mode)
	if err != nil {
		return nil, nil, err
	}

	primaryKey := make(entity.PrimaryKeyValues)
	primaryKeyColumns := make([]string, 0, 1)

	for _, field := range r.primaryKeyFields() {
		value, ok := data[field.StorageName]
		if !ok {
			// auto increment keys are assigned by the database
			if mode == Upsert {
				mode = Insert
			}

			continue
		}

		primaryKey[field.PropertyName] = value
		primaryKeyColumns = append(primaryKeyColumns, field.StorageName)
	}

	commands := append(before, Command{
		EntityName:        r.entityName,
		Table:             r.table,
		Mode:              mode,
		PrimaryKey:        primaryKey,
		PrimaryKeyColumns: primaryKeyColumns,
		Data:              data,
	})

	translationCommand, err := r.extractTranslation(payload, primaryKey, shopContext)
	if err != nil {
		return nil, nil, err
	}

	if translationCommand != nil {
		commands = append(commands, *translationCommand)
	}

	after, err := r.extractChildren(payload, primaryKey, shopContext)
	if err != nil {
		return nil, nil, err
	}

	return primaryKey, append(commands, after...), nil
}

func (r *Resource) extractTranslation(
	payload entity.Row,
	primaryKey entity.PrimaryKeyValues,
	shopContext entity.ShopContext,
) (*Command, error) {

	translationPayload := entity.Row{}

	for property := range r.translated {
		if value, ok := payload[property]; ok {
			translationPayload[property] = value
		}
	}

	if len(translationPayload) == 0 {
		return nil, nil
	}

	translation, err := r.referenceResource(r.translation)
	if err != nil {
		return nil, err
	}

	parentProperty, err := translation.foreignKeyTo(r.entityName)
	if err != nil {
		return nil, err
	}

	translationPayload[parentProperty] = firstValue(primaryKey)
	translationPayload["languageId"] = shopContext.LanguageID

	_, commands, err := translation.extract(translationPayload, Upsert, shopContext)
	if err != nil {
		return nil, errors.Join(err, fmt.Errorf("translation of %q", r.entityName))
	}

	return &commands[len(commands)-1], nil
}

func (r *Resource) extractChildren(
	payload entity.Row,
	primaryKey entity.PrimaryKeyValues,
	shopContext entity.ShopContext,
) ([]Command, error) {

	commands := make([]Command, 0)

	for _, property := range slices.Sorted(maps.Keys(r.associations)) {
		assoc := r.associations[property]
		if assoc.kind != oneToMany {
			continue
		}

		children, _ := toRows(payload[property])
		if len(children) == 0 {
			continue
		}

		reference, err := r.referenceResource(assoc.reference)
		if err != nil {
			return nil, err
		}

		foreignKey, err := reference.propertyOfColumn(assoc.foreignKey)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			child = maps.Clone(child)
			child[foreignKey] = firstValue(primaryKey)

			_, childCommands, childErr := reference.extract(child, Upsert, shopContext)
			if childErr != nil {
				return nil, errors.Join(childErr, fmt.Errorf("nested %q", property))
			}

			commands = append(commands, childCommands...)
		}
	}

	return commands, nil
}

// CreateWrittenEvent creates the written event of this resource from the written primary keys
// per entity name. Updates of the other entities are nested, in write order first.
func (r *Resource) CreateWrittenEvent(
	updates map[string][]entity.PrimaryKeyValues,
	shopContext entity.ShopContext,
	errs ...error,
) *entity.WrittenEvent {

	event := entity.NewWrittenEvent(r.entityName, updates[r.entityName], shopContext, errs...)

	nestedOrder := slices.Clone(r.writeOrder)
	for _, name := range slices.Sorted(maps.Keys(updates)) {
		nestedOrder = appendUnique(nestedOrder, name)
	}

	for _, name := range nestedOrder {
		if name == r.entityName || len(updates[name]) == 0 {
			continue
		}

		event.AddEvent(entity.NewWrittenEvent(name, updates[name], shopContext))
	}

	return event
}

func (r *Resource) primaryKeyFields() []Field {
	keys := make([]Field, 0, 1)
	for _, field := range r.fields {
		if field.Flags.Has(entity.PrimaryKey) {
			keys = append(keys, field)
		}
	}

	return keys
}

func (r *Resource) referenceResource(entityName string) (*Resource, error) {
	if r.registry == nil {
		return nil, errors.Join(ErrInvalidResource, fmt.Errorf("resource %q cannot resolve %q without registry", r.entityName, entityName))
	}

	definition, err := r.registry.Get(entityName)
	if err != nil {
		return nil, err
	}

	return FromDefinition(definition, r.registry)
}

func (r *Resource) foreignKeyTo(entityName string) (string, error) {
	definition, err := r.registry.Get(r.entityName)
	if err != nil {
		return "", err
	}

	for _, field := range definition.Fields().StorageFields() {
		if fk, ok := field.(*entity.FkField); ok && fk.ReferenceEntity() == entityName {
			return fk.PropertyName(), nil
		}
	}

	return "", errors.Join(ErrInvalidResource, fmt.Errorf("%q has no foreign key to %q", r.entityName, entityName))
}

func (r *Resource) propertyOfColumn(storageName string) (string, error) {
	for _, field := range r.fields {
		if field.StorageName == storageName {
			return field.PropertyName, nil
		}
	}

	return "", errors.Join(ErrInvalidResource, fmt.Errorf("%q has no column %q", r.entityName, storageName))
}

// checkShape reports nested payloads which cannot be written: a many-to-one value must be an
// object, a one-to-many value a list of objects. Null is accepted for both.
func (a association) checkShape(property string, value any) error {
	if value == nil {
		return nil
	}

	if a.kind == manyToOne {
		if _, ok := value.(map[string]any); !ok {
			return FieldError{Property: property, Reason: fmt.Sprintf("must be an object, got %T", value)}
		}

		return nil
	}

	if _, ok := toRows(value); !ok {
		return FieldError{Property: property, Reason: "must be a list of objects"}
	}

	return nil
}

// toRows converts a one-to-many payload into rows. It reports false if value is no list or one
// of its items is no object.
func toRows(value any) (entity.Rows, bool) {
	switch v := value.(type) {
	case entity.Rows:
		return v, true
	case []any:
		rows := make(entity.Rows, 0, len(v))
		for _, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}

			rows = append(rows, row)
		}

		return rows, true
	default:
		return nil, false
	}
}

func firstValue(primaryKey entity.PrimaryKeyValues) any {
	for _, key := range slices.Sorted(maps.Keys(primaryKey)) {
		return primaryKey[key]
	}

	return nil
}

func appendUnique(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}

	return append(names, name)
}
