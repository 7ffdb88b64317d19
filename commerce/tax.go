package commerce

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// TaxDefinition declares the tax entity.
func TaxDefinition() *entity.Definition {
	return entity.MustNewDefinition(TaxEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewPriceField("tax_rate", "taxRate", entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewOneToManyAssociationField("products", ProductEntity, "tax_id", false),
		entity.NewOneToManyAssociationField("areaRules", TaxAreaRuleEntity, "tax_id", false),
	})
}

// TaxAreaRuleDefinition declares the rules overriding a tax rate per country or customer group.
func TaxAreaRuleDefinition() *entity.Definition {
	return entity.MustNewDefinition(TaxAreaRuleEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("tax_id", "taxId", TaxEntity, entity.Required),
		entity.NewFkField("country_id", "countryId", CountryEntity),
		entity.NewFkField("customer_group_id", "customerGroupId", CustomerGroupEntity),
		entity.NewPriceField("tax_rate", "taxRate", entity.Required),
		entity.NewStringField("name", "name", entity.Required),
		entity.NewBoolField("active", "active"),
		entity.NewManyToOneAssociationField("tax", "tax_id", TaxEntity, false),
	})
}

// TaxBasic is a tax as read in basic reads.
type TaxBasic struct {
	ID      uuid.UUID       `entity:"id"`
	TaxRate decimal.Decimal `entity:"taxRate"`
	Name    string          `entity:"name"`
}

// EntityID implements entity.Identifiable.
func (t TaxBasic) EntityID() uuid.UUID { return t.ID }

// TaxDetail is a tax with the products using it and its area rules.
type TaxDetail struct {
	TaxBasic  `entity:",squash"`
	Products  entity.Collection[ProductBasic]     `entity:"products"`
	AreaRules entity.Collection[TaxAreaRuleBasic] `entity:"areaRules"`
}

// NewTaxDetail creates a TaxDetail without products and area rules.
func NewTaxDetail(basic TaxBasic) TaxDetail {
	return TaxDetail{
		TaxBasic:  basic,
		Products:  entity.NewCollection[ProductBasic](),
		AreaRules: entity.NewCollection[TaxAreaRuleBasic](),
	}
}

// TaxAreaRuleBasic is a tax area rule as read in basic reads.
type TaxAreaRuleBasic struct {
	ID              uuid.UUID       `entity:"id"`
	TaxID           uuid.UUID       `entity:"taxId"`
	CountryID       uuid.UUID       `entity:"countryId"`
	CustomerGroupID uuid.UUID       `entity:"customerGroupId"`
	TaxRate         decimal.Decimal `entity:"taxRate"`
	Name            string          `entity:"name"`
	Active          bool            `entity:"active"`
}

// EntityID implements entity.Identifiable.
func (r TaxAreaRuleBasic) EntityID() uuid.UUID { return r.ID }

// TaxDetailNested fires the basic loaded events of the products and area rules of the taxes.
func TaxDetailNested(taxes entity.Collection[TaxDetail], shopContext entity.ShopContext) entity.NestedEvents {
	events := entity.NestedEvents{}

	products := childCollections(taxes, func(t TaxDetail) entity.Collection[ProductBasic] { return t.Products })
	events = appendLoaded(events, ProductEntity, products, shopContext, ProductBasicNested)

	areaRules := childCollections(taxes, func(t TaxDetail) entity.Collection[TaxAreaRuleBasic] { return t.AreaRules })
	events = appendLoaded(events, TaxAreaRuleEntity, areaRules, shopContext, nil)

	return events
}
