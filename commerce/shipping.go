package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// ShippingMethodDefinition declares the shipping method entity.
func ShippingMethodDefinition() *entity.Definition {
	return entity.MustNewDefinition(ShippingMethodEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewIntField("type", "type"),
		entity.NewBoolField("active", "active"),
		entity.NewIntField("position", "position"),
		entity.NewIntField("calculation", "calculation"),
		entity.NewPriceField("shipping_free", "shippingFree"),
		entity.NewDateField("created_at", "createdAt"),
		entity.NewDateField("updated_at", "updatedAt"),
		entity.NewOneToManyAssociationField("prices", ShippingMethodPriceEntity, "shipping_method_id", false),
	})
}

// ShippingMethodPriceDefinition declares the price staggering of shipping methods by quantity.
func ShippingMethodPriceDefinition() *entity.Definition {
	return entity.MustNewDefinition(ShippingMethodPriceEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("shipping_method_id", "shippingMethodId", ShippingMethodEntity, entity.Required),
		entity.NewFloatField("quantity_from", "quantityFrom", entity.Required),
		entity.NewFloatField("price", "price", entity.Required),
		entity.NewFloatField("factor", "factor", entity.Required),
		entity.NewDateField("created_at", "createdAt"),
		entity.NewDateField("updated_at", "updatedAt"),
		entity.NewManyToOneAssociationField("shippingMethod", "shipping_method_id", ShippingMethodEntity, false),
	})
}

// ShippingMethodBasic is a shipping method as read in basic reads.
type ShippingMethodBasic struct {
	ID           uuid.UUID       `entity:"id"`
	Name         string          `entity:"name"`
	Type         int             `entity:"type"`
	Active       bool            `entity:"active"`
	Position     int             `entity:"position"`
	Calculation  int             `entity:"calculation"`
	ShippingFree decimal.Decimal `entity:"shippingFree"`
	CreatedAt    time.Time       `entity:"createdAt"`
	UpdatedAt    time.Time       `entity:"updatedAt"`
}

// EntityID implements entity.Identifiable.
func (m ShippingMethodBasic) EntityID() uuid.UUID { return m.ID }

// ShippingMethodDetail is a shipping method with its prices.
type ShippingMethodDetail struct {
	ShippingMethodBasic `entity:",squash"`
	Prices              entity.Collection[ShippingMethodPriceBasic] `entity:"prices"`
}

// ShippingMethodPriceBasic is one price stage of a shipping method.
type ShippingMethodPriceBasic struct {
	ID               uuid.UUID `entity:"id"`
	ShippingMethodID uuid.UUID `entity:"shippingMethodId"`
	QuantityFrom     float64   `entity:"quantityFrom"`
	Price            float64   `entity:"price"`
	Factor           float64   `entity:"factor"`
	CreatedAt        time.Time `entity:"createdAt"`
	UpdatedAt        time.Time `entity:"updatedAt"`
}

// EntityID implements entity.Identifiable.
func (p ShippingMethodPriceBasic) EntityID() uuid.UUID { return p.ID }

// ShippingMethodDetailNested fires the basic loaded event of the prices of the shipping methods.
func ShippingMethodDetailNested(
	methods entity.Collection[ShippingMethodDetail],
	shopContext entity.ShopContext,
) entity.NestedEvents {

	prices := childCollections(methods, func(m ShippingMethodDetail) entity.Collection[ShippingMethodPriceBasic] {
		return m.Prices
	})

	return appendLoaded(entity.NestedEvents{}, ShippingMethodPriceEntity, prices, shopContext, nil)
}
