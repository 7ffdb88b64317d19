package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// OrderDefinition declares the order entity.
func OrderDefinition() *entity.Definition {
	return entity.MustNewDefinition(OrderEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("order_number", "orderNumber", entity.Required, entity.Searchable),
		entity.NewFkField("customer_id", "customerId", CustomerEntity, entity.Required),
		entity.NewFkField("payment_method_id", "paymentMethodId", PaymentMethodEntity, entity.Required),
		entity.NewFkField("shipping_method_id", "shippingMethodId", ShippingMethodEntity),
		entity.NewFkField("shop_id", "shopId", ShopEntity, entity.Required),
		entity.NewPriceField("amount_total", "amountTotal", entity.Required),
		entity.NewPriceField("amount_net", "amountNet"),
		entity.NewPriceField("shipping_total", "shippingTotal"),
		entity.NewIntField("status", "status"),
		entity.NewDateField("ordered_at", "orderedAt", entity.Required),
		entity.NewManyToOneAssociationField("paymentMethod", "payment_method_id", PaymentMethodEntity, true),
		entity.NewManyToOneAssociationField("customer", "customer_id", CustomerEntity, false),
	})
}

// OrderBasic is an order with its payment method.
type OrderBasic struct {
	ID               uuid.UUID           `entity:"id"`
	OrderNumber      string              `entity:"orderNumber"`
	CustomerID       uuid.UUID           `entity:"customerId"`
	PaymentMethodID  uuid.UUID           `entity:"paymentMethodId"`
	ShippingMethodID uuid.UUID           `entity:"shippingMethodId"`
	ShopID           uuid.UUID           `entity:"shopId"`
	AmountTotal      decimal.Decimal     `entity:"amountTotal"`
	AmountNet        decimal.Decimal     `entity:"amountNet"`
	ShippingTotal    decimal.Decimal     `entity:"shippingTotal"`
	Status           int                 `entity:"status"`
	OrderedAt        time.Time           `entity:"orderedAt"`
	PaymentMethod    *PaymentMethodBasic `entity:"paymentMethod"`
}

// EntityID implements entity.Identifiable.
func (o OrderBasic) EntityID() uuid.UUID { return o.ID }

// OrderBasicNested fires the basic loaded event of the payment methods of the orders.
func OrderBasicNested(orders entity.Collection[OrderBasic], shopContext entity.ShopContext) entity.NestedEvents {
	paymentMethods := loadedAssociations(orders, func(o OrderBasic) *PaymentMethodBasic { return o.PaymentMethod })

	return appendLoaded(entity.NestedEvents{}, PaymentMethodEntity, paymentMethods, shopContext, nil)
}
