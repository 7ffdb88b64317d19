package dbal_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

var (
	productID1 = uuid.MustParse("0198a1c4-0000-7000-8000-000000000001")
	productID2 = uuid.MustParse("0198a1c4-0000-7000-8000-000000000002")
	taxID      = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000aa")
	germanID   = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000de")
)

func testRegistry(t *testing.T) *entity.Registry {
	t.Helper()

	tax := entity.MustNewDefinition("tax", []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewPriceField("tax_rate", "taxRate", entity.Required),
		entity.NewStringField("name", "name", entity.Required),
		entity.NewOneToManyAssociationField("products", "product", "tax_id", false),
	})

	product := entity.MustNewDefinition("product", []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("tax_id", "taxId", "tax", entity.Required),
		entity.NewStringField("ean", "ean"),
		entity.NewIntField("stock", "stock"),
		entity.NewPriceField("price", "price"),
		entity.NewBoolField("active", "active"),
		entity.NewArrayField("tags", "tags"),
		entity.NewTranslatedField("name"),
		entity.NewManyToOneAssociationField("tax", "tax_id", "tax", true),
	}, entity.WithTranslationDefinition("product_translation"))

	productTranslation := entity.MustNewDefinition("product_translation", []entity.Field{
		entity.NewFkField("product_id", "productId", "product", entity.PrimaryKey, entity.Required),
		entity.NewIDField("language_id", "languageId", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name"),
	}, entity.WithParentDefinition("product"))

	registry, err := entity.NewRegistry(tax, product, productTranslation)
	require.NoError(t, err)
	require.NoError(t, registry.Validate())

	return registry
}

func definitionOf(t *testing.T, registry *entity.Registry, name string) *entity.Definition {
	t.Helper()

	definition, err := registry.Get(name)
	require.NoError(t, err)

	return definition
}
