package dbal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	translationSuffix  = ".translation"
	fallbackSuffix     = ".fallback"
	languageIDProperty = "languageId"
)

// Column is a column reference or an expression over columns, e.g. COALESCE of two translations.
type Column interface {
	exp.Expression
	exp.Comparable
	exp.Inable
	exp.Isable
	exp.Likeable
	exp.Orderable
}

// ResolvedField is the outcome of resolving a property path.
type ResolvedField struct {
	// Definition owns the terminal field.
	Definition *entity.Definition

	// Field is the terminal field.
	Field entity.Field

	// Alias is the table alias of the terminal definition, e.g. "product.tax".
	Alias string

	// Column is the expression to compare against.
	Column Column

	// Joins are the joins needed to reach the column, in order.
	Joins []Join
}

// FieldAccessor resolves dotted property paths like "product.tax.taxRate" against definitions.
type FieldAccessor struct {
	registry *entity.Registry
	dialect  Dialect
}

// NewFieldAccessor creates a FieldAccessor.
func NewFieldAccessor(registry *entity.Registry, dialect Dialect) FieldAccessor {
	return FieldAccessor{registry: registry, dialect: dialect}
}

// Resolve resolves path against root. The leading root segment is optional:
// "product.name" and "name" resolve to the same column of the product definition.
func (a FieldAccessor) Resolve(root *entity.Definition, path string, shopContext entity.ShopContext) (ResolvedField, error) {
	segments := strings.Split(strings.TrimSpace(path), ".")
	if len(segments) > 1 && segments[0] == root.Name() {
		segments = segments[1:]
	}

	if len(segments) == 0 || segments[0] == "" {
		return ResolvedField{}, entity.ErrEmptyQueryField
	}

	current := root
	alias := root.Name()
	joins := make([]Join, 0)

	for _, segment := range segments[:len(segments)-1] {
		field, ok := current.Field(segment)
		if !ok {
			return ResolvedField{}, unknownField(current, segment, path)
		}

		reference, join, err := a.associationJoin(alias, field)
		if err != nil {
			return ResolvedField{}, errors.Join(err, fmt.Errorf("path %q", path))
		}

		joins = append(joins, join)
		current = reference
		alias = join.Alias
	}

	last := segments[len(segments)-1]

	field, ok := current.Field(last)
	if !ok {
		return ResolvedField{}, unknownField(current, last, path)
	}

	resolved := ResolvedField{Definition: current, Field: field, Alias: alias}

	switch f := field.(type) {
	case *entity.TranslatedField:
		column, translationJoins, err := a.translatedColumn(current, alias, f, shopContext)
		if err != nil {
			return ResolvedField{}, errors.Join(err, fmt.Errorf("path %q", path))
		}

		resolved.Column = column
		joins = append(joins, translationJoins...)

	case *entity.ManyToOneAssociationField:
		resolved.Column = goqu.T(alias).Col(f.StorageName())

	case entity.AssociationField:
		return ResolvedField{}, errors.Join(entity.ErrUnknownField, fmt.Errorf("%q is a to-many association and has no column", path))

	case entity.StorageField:
		resolved.Column = goqu.T(alias).Col(f.StorageName())

	default:
		return ResolvedField{}, unknownField(current, last, path)
	}

	resolved.Joins = joins

	return resolved, nil
}

// associationJoin builds the join from alias to the entity referenced by field.
func (a FieldAccessor) associationJoin(alias string, field entity.Field) (*entity.Definition, Join, error) {
	association, ok := field.(entity.AssociationField)
	if !ok {
		return nil, Join{}, errors.Join(entity.ErrUnknownField, fmt.Errorf("%q is no association", field.PropertyName()))
	}

	reference, err := a.registry.Get(association.ReferenceEntity())
	if err != nil {
		return nil, Join{}, err
	}

	childAlias := alias + "." + field.PropertyName()
	join := Join{Table: reference.Name(), Alias: childAlias}

	switch f := field.(type) {
	case *entity.ManyToOneAssociationField:
		join.On = goqu.T(childAlias).Col(f.ReferenceField()).Eq(goqu.T(alias).Col(f.StorageName()))
	case *entity.OneToManyAssociationField:
		join.On = goqu.T(childAlias).Col(f.ReferenceField()).Eq(goqu.T(alias).Col(f.LocalField()))
	default:
		return nil, Join{}, errors.Join(entity.ErrUnknownField, fmt.Errorf("unsupported association %T", field))
	}

	return reference, join, nil
}

// translatedColumn joins the translation of the context language and, if configured, of the
// fallback language, and returns the column to read the translated value from.
func (a FieldAccessor) translatedColumn(
	definition *entity.Definition,
	alias string,
	field *entity.TranslatedField,
	shopContext entity.ShopContext,
) (Column, []Join, error) {

	layout, err := a.translationLayout(definition)
	if err != nil {
		return nil, nil, err
	}

	translated, ok := layout.definition.Fields().Get(field.PropertyName())
	if !ok {
		return nil, nil, unknownField(layout.definition, field.PropertyName(), field.PropertyName())
	}

	storage, ok := translated.(entity.StorageField)
	if !ok {
		return nil, nil, unknownField(layout.definition, field.PropertyName(), field.PropertyName())
	}

	translationAlias := alias + translationSuffix
	joins := []Join{layout.join(alias, translationAlias, a.dialect.uuidValue(shopContext.LanguageID))}

	if !shopContext.HasFallbackLanguage() {
		return goqu.T(translationAlias).Col(storage.StorageName()), joins, nil
	}

	fallbackAlias := translationAlias + fallbackSuffix
	joins = append(joins, layout.join(alias, fallbackAlias, a.dialect.uuidValue(shopContext.FallbackLanguageID)))

	return goqu.COALESCE(
		goqu.T(translationAlias).Col(storage.StorageName()),
		goqu.T(fallbackAlias).Col(storage.StorageName()),
	), joins, nil
}

type translationLayout struct {
	definition     *entity.Definition
	parentColumn   string
	languageColumn string
	localColumn    string
}

func (l translationLayout) join(parentAlias, alias string, languageID any) Join {
	return Join{
		Table: l.definition.Name(),
		Alias: alias,
		On: goqu.And(
			goqu.T(alias).Col(l.parentColumn).Eq(goqu.T(parentAlias).Col(l.localColumn)),
			goqu.T(alias).Col(l.languageColumn).Eq(languageID),
		),
	}
}

// translationLayout finds the translation definition of definition, its foreign key back to
// definition and its language column.
func (a FieldAccessor) translationLayout(definition *entity.Definition) (translationLayout, error) {
	if definition.TranslationDefinition() == "" {
		return translationLayout{}, errors.Join(entity.ErrUnknownField, fmt.Errorf("%q has no translation definition", definition.Name()))
	}

	translation, err := a.registry.Get(definition.TranslationDefinition())
	if err != nil {
		return translationLayout{}, err
	}

	layout := translationLayout{definition: translation}

	for _, field := range translation.Fields().StorageFields() {
		if fk, ok := field.(*entity.FkField); ok && fk.ReferenceEntity() == definition.Name() {
			layout.parentColumn = fk.StorageName()
		}

		if field.PropertyName() == languageIDProperty {
			layout.languageColumn = field.StorageName()
		}
	}

	if layout.parentColumn == "" || layout.languageColumn == "" {
		return translationLayout{}, errors.Join(
			entity.ErrUnknownField,
			fmt.Errorf("translation %q needs a foreign key to %q and a %q field", translation.Name(), definition.Name(), languageIDProperty),
		)
	}

	primaryKeys := definition.PrimaryKeys()
	if len(primaryKeys) != 1 {
		return translationLayout{}, errors.Join(ErrNoUUIDPrimaryKey, fmt.Errorf("translated entity %q", definition.Name()))
	}

	layout.localColumn = primaryKeys[0].StorageName()

	return layout, nil
}

func unknownField(definition *entity.Definition, segment, path string) error {
	return errors.Join(entity.ErrUnknownField, fmt.Errorf("%q of %q in path %q", segment, definition.Name(), path))
}
