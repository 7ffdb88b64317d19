package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// ProductDefinition declares the product entity. Name and description are translated.
func ProductDefinition() *entity.Definition {
	return entity.MustNewDefinition(ProductEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("tax_id", "taxId", TaxEntity, entity.Required),
		entity.NewStringField("ean", "ean", entity.Searchable),
		entity.NewIntField("stock", "stock"),
		entity.NewPriceField("price", "price", entity.Required),
		entity.NewBoolField("active", "active"),
		entity.NewArrayField("tags", "tags"),
		entity.NewTranslatedField("name", entity.Required, entity.Searchable),
		entity.NewTranslatedField("description"),
		entity.NewDateField("created_at", "createdAt"),
		entity.NewDateField("updated_at", "updatedAt"),
		entity.NewManyToOneAssociationField("tax", "tax_id", TaxEntity, true),
	}, entity.WithTranslationDefinition(ProductTranslationEntity))
}

// ProductTranslationDefinition declares the translated columns of products.
func ProductTranslationDefinition() *entity.Definition {
	return entity.MustNewDefinition(ProductTranslationEntity, []entity.Field{
		entity.NewFkField("product_id", "productId", ProductEntity, entity.PrimaryKey, entity.Required),
		entity.NewIDField("language_id", "languageId", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name"),
		entity.NewStringField("description", "description"),
	}, entity.WithParentDefinition(ProductEntity))
}

// ProductBasic is a product with its tax.
type ProductBasic struct {
	ID          uuid.UUID       `entity:"id"`
	TaxID       uuid.UUID       `entity:"taxId"`
	EAN         string          `entity:"ean"`
	Stock       int             `entity:"stock"`
	Price       decimal.Decimal `entity:"price"`
	Active      bool            `entity:"active"`
	Tags        []string        `entity:"tags"`
	Name        string          `entity:"name"`
	Description string          `entity:"description"`
	CreatedAt   time.Time       `entity:"createdAt"`
	UpdatedAt   time.Time       `entity:"updatedAt"`
	Tax         *TaxBasic       `entity:"tax"`
}

// EntityID implements entity.Identifiable.
func (p ProductBasic) EntityID() uuid.UUID { return p.ID }

// ProductBasicNested fires the basic loaded event of the taxes of the products.
func ProductBasicNested(products entity.Collection[ProductBasic], shopContext entity.ShopContext) entity.NestedEvents {
	taxes := loadedAssociations(products, func(p ProductBasic) *TaxBasic { return p.Tax })

	return appendLoaded(entity.NestedEvents{}, TaxEntity, taxes, shopContext, nil)
}
