package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

func taxDefinition(t *testing.T) *entity.Definition {
	t.Helper()

	definition, err := entity.NewDefinition("tax", []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFloatField("tax_rate", "taxRate", entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewOneToManyAssociationField("areaRules", "tax_area_rule", "tax_id", false),
	})
	require.NoError(t, err)

	return definition
}

func taxAreaRuleDefinition(t *testing.T) *entity.Definition {
	t.Helper()

	definition, err := entity.NewDefinition("tax_area_rule", []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("tax_id", "taxId", "tax", entity.Required),
		entity.NewManyToOneAssociationField("tax", "tax_id", "tax", true),
	})
	require.NoError(t, err)

	return definition
}

//nolint:funlen
func Test_NewDefinition(t *testing.T) {
	tests := []struct {
		name        string
		entityName  string
		fields      []entity.Field
		options     []entity.DefinitionOption
		expectedErr error
	}{
		{
			name:       "valid_definition",
			entityName: "tax",
			fields: []entity.Field{
				entity.NewIDField("id", "id", entity.PrimaryKey),
			},
		},
		{
			name:        "empty_entity_name",
			entityName:  " ",
			fields:      []entity.Field{entity.NewIDField("id", "id", entity.PrimaryKey)},
			expectedErr: entity.ErrEmptyEntityName,
		},
		{
			name:        "missing_primary_key",
			entityName:  "tax",
			fields:      []entity.Field{entity.NewStringField("name", "name")},
			expectedErr: entity.ErrMissingPrimaryKey,
		},
		{
			name:       "duplicate_property_name",
			entityName: "tax",
			fields: []entity.Field{
				entity.NewIDField("id", "id", entity.PrimaryKey),
				entity.NewStringField("name", "name"),
				entity.NewStringField("description", "name"),
			},
			expectedErr: entity.ErrDuplicateField,
		},
		{
			name:       "extension_adds_primary_key",
			entityName: "tax",
			fields:     []entity.Field{entity.NewStringField("name", "name")},
			options: []entity.DefinitionOption{
				entity.WithExtensions(entity.ExtensionFunc(func(fields *entity.FieldCollection) error {
					return fields.Add(entity.NewIDField("id", "id", entity.PrimaryKey))
				})),
			},
		},
		{
			name:       "extension_with_duplicate_field",
			entityName: "tax",
			fields:     []entity.Field{entity.NewIDField("id", "id", entity.PrimaryKey)},
			options: []entity.DefinitionOption{
				entity.WithExtensions(entity.ExtensionFunc(func(fields *entity.FieldCollection) error {
					return fields.Add(entity.NewStringField("other_id", "id"))
				})),
			},
			expectedErr: entity.ErrDuplicateField,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			definition, err := entity.NewDefinition(tc.entityName, tc.fields, tc.options...)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, definition)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.entityName, definition.Name())
			assert.Len(t, definition.PrimaryKeys(), 1)
		})
	}
}

func Test_Definition_FieldLookups(t *testing.T) {
	definition := taxAreaRuleDefinition(t)

	field, ok := definition.Field("taxId")
	require.True(t, ok)
	assert.True(t, entity.IsUUIDField(field))
	assert.True(t, field.Flags().Has(entity.Required))
	assert.False(t, field.Flags().Has(entity.PrimaryKey))

	byStorage, ok := definition.Fields().GetByStorageName("tax_id")
	require.True(t, ok)
	assert.Same(t, field, byStorage, "the association must not shadow its foreign key column")

	assert.Len(t, definition.Fields().StorageFields(), 2)
	assert.Len(t, definition.Fields().Associations(), 1)

	_, ok = definition.Field("unknown")
	assert.False(t, ok)
}

func Test_Definition_CompositePrimaryKey(t *testing.T) {
	definition, err := entity.NewDefinition("product_translation", []entity.Field{
		entity.NewFkField("product_id", "productId", "product", entity.PrimaryKey, entity.Required),
		entity.NewIDField("language_id", "languageId", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name"),
	}, entity.WithParentDefinition("product"))
	require.NoError(t, err)

	values := entity.PrimaryKeyValues{}
	for _, field := range definition.PrimaryKeys() {
		assert.True(t, field.Flags().Has(entity.PrimaryKey))
		values[field.PropertyName()] = field.StorageName()
	}

	assert.Equal(t, entity.PrimaryKeyValues{"productId": "product_id", "languageId": "language_id"}, values)
}

func Test_Definition_EventNames(t *testing.T) {
	definition := taxDefinition(t)

	assert.Equal(t, "tax.basic.loaded", definition.BasicLoadedEventName())
	assert.Equal(t, "tax.detail.loaded", definition.DetailLoadedEventName())
	assert.Equal(t, "tax.search.result.loaded", definition.SearchResultLoadedEventName())
	assert.Equal(t, "tax.id.search.result.loaded", definition.IDSearchResultLoadedEventName())
	assert.Equal(t, "tax.written", definition.WrittenEventName())
	assert.Equal(t, "tax.deleted", definition.DeletedEventName())
}

func Test_MustNewDefinition_Panics(t *testing.T) {
	assert.Panics(t, func() {
		entity.MustNewDefinition("", nil)
	})
}

func Test_Registry(t *testing.T) {
	registry, err := entity.NewRegistry(taxDefinition(t), taxAreaRuleDefinition(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"tax", "tax_area_rule"}, registry.Names())
	assert.NoError(t, registry.Validate())

	definition, err := registry.Get("tax")
	require.NoError(t, err)
	assert.Equal(t, "tax", definition.Name())

	_, err = registry.Get("product")
	assert.ErrorIs(t, err, entity.ErrUnknownEntity)

	err = registry.Register(taxDefinition(t))
	assert.ErrorIs(t, err, entity.ErrDuplicateEntity)
}

func Test_Registry_Validate_UnknownReference(t *testing.T) {
	registry, err := entity.NewRegistry(taxAreaRuleDefinition(t))
	require.NoError(t, err)

	err = registry.Validate()
	assert.ErrorIs(t, err, entity.ErrUnknownAssociation)
	assert.ErrorContains(t, err, `tax_area_rule.taxId -> "tax"`)
}
