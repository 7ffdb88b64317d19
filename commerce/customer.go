package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// CustomerDetailLoaded is the name of CustomerDetailLoadedEvent.
const CustomerDetailLoaded = CustomerEntity + detailLoadedSuffix

// CustomerDefinition declares the customer entity. Basic reads join the group, the payment
// methods, the shops and the default addresses of a customer.
func CustomerDefinition() *entity.Definition {
	return entity.MustNewDefinition(CustomerEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("customer_number", "customerNumber", entity.Searchable),
		entity.NewFkField("customer_group_id", "groupId", CustomerGroupEntity, entity.Required),
		entity.NewFkField("default_payment_method_id", "defaultPaymentMethodId", PaymentMethodEntity, entity.Required),
		entity.NewFkField("last_payment_method_id", "lastPaymentMethodId", PaymentMethodEntity),
		entity.NewFkField("shop_id", "shopId", ShopEntity, entity.Required),
		entity.NewFkField("main_shop_id", "mainShopId", ShopEntity, entity.Required),
		entity.NewFkField("default_billing_address_id", "defaultBillingAddressId", CustomerAddressEntity),
		entity.NewFkField("default_shipping_address_id", "defaultShippingAddressId", CustomerAddressEntity),
		entity.NewStringField("salutation", "salutation"),
		entity.NewStringField("first_name", "firstName", entity.Required, entity.Searchable),
		entity.NewStringField("last_name", "lastName", entity.Required, entity.Searchable),
		entity.NewStringField("email", "email", entity.Required, entity.Searchable),
		entity.NewBoolField("active", "active"),
		entity.NewBoolField("guest", "guest"),
		entity.NewDateField("first_login", "firstLogin"),
		entity.NewDateField("last_login", "lastLogin"),
		entity.NewDateField("created_at", "createdAt"),
		entity.NewManyToOneAssociationField("group", "customer_group_id", CustomerGroupEntity, true),
		entity.NewManyToOneAssociationField("defaultPaymentMethod", "default_payment_method_id", PaymentMethodEntity, true),
		entity.NewManyToOneAssociationField("lastPaymentMethod", "last_payment_method_id", PaymentMethodEntity, true),
		entity.NewManyToOneAssociationField("shop", "shop_id", ShopEntity, true),
		entity.NewManyToOneAssociationField("mainShop", "main_shop_id", ShopEntity, true),
		entity.NewManyToOneAssociationField("defaultBillingAddress", "default_billing_address_id", CustomerAddressEntity, true),
		entity.NewManyToOneAssociationField("defaultShippingAddress", "default_shipping_address_id", CustomerAddressEntity, true),
		entity.NewOneToManyAssociationField("addresses", CustomerAddressEntity, "customer_id", false),
		entity.NewOneToManyAssociationField("orders", OrderEntity, "customer_id", false),
	})
}

// CustomerGroupDefinition declares the customer group entity.
func CustomerGroupDefinition() *entity.Definition {
	return entity.MustNewDefinition(CustomerGroupEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewBoolField("display_gross", "displayGross"),
		entity.NewBoolField("input_gross", "inputGross"),
		entity.NewBoolField("has_global_discount", "hasGlobalDiscount"),
		entity.NewFloatField("percentage_global_discount", "percentageGlobalDiscount"),
		entity.NewPriceField("minimum_order_amount", "minimumOrderAmount"),
		entity.NewPriceField("minimum_order_amount_surcharge", "minimumOrderAmountSurcharge"),
	})
}

// CustomerAddressDefinition declares the addresses of customers.
func CustomerAddressDefinition() *entity.Definition {
	return entity.MustNewDefinition(CustomerAddressEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("customer_id", "customerId", CustomerEntity, entity.Required),
		entity.NewFkField("country_id", "countryId", CountryEntity, entity.Required),
		entity.NewStringField("company", "company"),
		entity.NewStringField("salutation", "salutation"),
		entity.NewStringField("first_name", "firstName", entity.Required),
		entity.NewStringField("last_name", "lastName", entity.Required),
		entity.NewStringField("street", "street", entity.Required),
		entity.NewStringField("zipcode", "zipcode", entity.Required, entity.Searchable),
		entity.NewStringField("city", "city", entity.Required, entity.Searchable),
		entity.NewStringField("phone_number", "phoneNumber"),
		entity.NewManyToOneAssociationField("country", "country_id", CountryEntity, false),
	})
}

// CustomerGroupBasic is a customer group as read in basic reads.
type CustomerGroupBasic struct {
	ID                          uuid.UUID       `entity:"id"`
	Name                        string          `entity:"name"`
	DisplayGross                bool            `entity:"displayGross"`
	InputGross                  bool            `entity:"inputGross"`
	HasGlobalDiscount           bool            `entity:"hasGlobalDiscount"`
	PercentageGlobalDiscount    float64         `entity:"percentageGlobalDiscount"`
	MinimumOrderAmount          decimal.Decimal `entity:"minimumOrderAmount"`
	MinimumOrderAmountSurcharge decimal.Decimal `entity:"minimumOrderAmountSurcharge"`
}

// EntityID implements entity.Identifiable.
func (g CustomerGroupBasic) EntityID() uuid.UUID { return g.ID }

// CustomerAddressBasic is a customer address as read in basic reads.
type CustomerAddressBasic struct {
	ID          uuid.UUID `entity:"id"`
	CustomerID  uuid.UUID `entity:"customerId"`
	CountryID   uuid.UUID `entity:"countryId"`
	Company     string    `entity:"company"`
	Salutation  string    `entity:"salutation"`
	FirstName   string    `entity:"firstName"`
	LastName    string    `entity:"lastName"`
	Street      string    `entity:"street"`
	Zipcode     string    `entity:"zipcode"`
	City        string    `entity:"city"`
	PhoneNumber string    `entity:"phoneNumber"`
}

// EntityID implements entity.Identifiable.
func (a CustomerAddressBasic) EntityID() uuid.UUID { return a.ID }

// CustomerBasic is a customer with the associations joined in basic reads.
// Optional associations which are not set are nil.
type CustomerBasic struct {
	ID                       uuid.UUID `entity:"id"`
	CustomerNumber           string    `entity:"customerNumber"`
	GroupID                  uuid.UUID `entity:"groupId"`
	DefaultPaymentMethodID   uuid.UUID `entity:"defaultPaymentMethodId"`
	LastPaymentMethodID      uuid.UUID `entity:"lastPaymentMethodId"`
	ShopID                   uuid.UUID `entity:"shopId"`
	MainShopID               uuid.UUID `entity:"mainShopId"`
	DefaultBillingAddressID  uuid.UUID `entity:"defaultBillingAddressId"`
	DefaultShippingAddressID uuid.UUID `entity:"defaultShippingAddressId"`
	Salutation               string    `entity:"salutation"`
	FirstName                string    `entity:"firstName"`
	LastName                 string    `entity:"lastName"`
	Email                    string    `entity:"email"`
	Active                   bool      `entity:"active"`
	Guest                    bool      `entity:"guest"`
	FirstLogin               time.Time `entity:"firstLogin"`
	LastLogin                time.Time `entity:"lastLogin"`
	CreatedAt                time.Time `entity:"createdAt"`

	Group                  *CustomerGroupBasic   `entity:"group"`
	DefaultPaymentMethod   *PaymentMethodBasic   `entity:"defaultPaymentMethod"`
	LastPaymentMethod      *PaymentMethodBasic   `entity:"lastPaymentMethod"`
	Shop                   *ShopBasic            `entity:"shop"`
	MainShop               *ShopBasic            `entity:"mainShop"`
	DefaultBillingAddress  *CustomerAddressBasic `entity:"defaultBillingAddress"`
	DefaultShippingAddress *CustomerAddressBasic `entity:"defaultShippingAddress"`
}

// EntityID implements entity.Identifiable.
func (c CustomerBasic) EntityID() uuid.UUID { return c.ID }

// CustomerDetail is a customer with all addresses and orders.
type CustomerDetail struct {
	CustomerBasic `entity:",squash"`
	Addresses     entity.Collection[CustomerAddressBasic] `entity:"addresses"`
	Orders        entity.Collection[OrderBasic]           `entity:"orders"`
}

// CustomerBasicNested fires the basic loaded events of the associations joined in basic reads.
func CustomerBasicNested(customers entity.Collection[CustomerBasic], shopContext entity.ShopContext) entity.NestedEvents {
	return customerAssociationEvents(customers, func(c CustomerBasic) CustomerBasic { return c }, shopContext)
}

// customerAssociationEvents builds the loaded events of the many-to-one associations, in the
// order groups, default payment methods, shops, main shops, last payment methods, default
// billing addresses and default shipping addresses.
func customerAssociationEvents[T entity.Identifiable](
	customers entity.Collection[T],
	basic func(T) CustomerBasic,
	shopContext entity.ShopContext,
) entity.NestedEvents {

	events := entity.NestedEvents{}

	groups := loadedAssociations(customers, func(c T) *CustomerGroupBasic { return basic(c).Group })
	events = appendLoaded(events, CustomerGroupEntity, groups, shopContext, nil)

	defaultPaymentMethods := loadedAssociations(customers, func(c T) *PaymentMethodBasic { return basic(c).DefaultPaymentMethod })
	events = appendLoaded(events, PaymentMethodEntity, defaultPaymentMethods, shopContext, nil)

	shops := loadedAssociations(customers, func(c T) *ShopBasic { return basic(c).Shop })
	events = appendLoaded(events, ShopEntity, shops, shopContext, nil)

	mainShops := loadedAssociations(customers, func(c T) *ShopBasic { return basic(c).MainShop })
	events = appendLoaded(events, ShopEntity, mainShops, shopContext, nil)

	lastPaymentMethods := loadedAssociations(customers, func(c T) *PaymentMethodBasic { return basic(c).LastPaymentMethod })
	events = appendLoaded(events, PaymentMethodEntity, lastPaymentMethods, shopContext, nil)

	billingAddresses := loadedAssociations(customers, func(c T) *CustomerAddressBasic { return basic(c).DefaultBillingAddress })
	events = appendLoaded(events, CustomerAddressEntity, billingAddresses, shopContext, nil)

	shippingAddresses := loadedAssociations(customers, func(c T) *CustomerAddressBasic { return basic(c).DefaultShippingAddress })
	events = appendLoaded(events, CustomerAddressEntity, shippingAddresses, shopContext, nil)

	return events
}

// CustomerDetailLoadedEvent is fired after customers were read as details. Its nested events
// are the basic loaded events of every non-empty association.
type CustomerDetailLoadedEvent struct {
	customers entity.Collection[CustomerDetail]
	context   entity.ShopContext
}

// NewCustomerDetailLoadedEvent creates a CustomerDetailLoadedEvent.
func NewCustomerDetailLoadedEvent(
	customers entity.Collection[CustomerDetail],
	shopContext entity.ShopContext,
) CustomerDetailLoadedEvent {

	return CustomerDetailLoadedEvent{customers: customers, context: shopContext}
}

// Name implements entity.NestedEvent.
func (e CustomerDetailLoadedEvent) Name() string { return CustomerDetailLoaded }

// Context implements entity.NestedEvent.
func (e CustomerDetailLoadedEvent) Context() entity.ShopContext { return e.context }

// Customers returns the loaded customers.
func (e CustomerDetailLoadedEvent) Customers() entity.Collection[CustomerDetail] { return e.customers }

// Events implements entity.NestedEvent.
func (e CustomerDetailLoadedEvent) Events() entity.NestedEvents {
	events := customerAssociationEvents(e.customers, func(c CustomerDetail) CustomerBasic { return c.CustomerBasic }, e.context)

	addresses := childCollections(e.customers, func(c CustomerDetail) entity.Collection[CustomerAddressBasic] { return c.Addresses })
	events = appendLoaded(events, CustomerAddressEntity, addresses, e.context, nil)

	orders := childCollections(e.customers, func(c CustomerDetail) entity.Collection[OrderBasic] { return c.Orders })
	events = appendLoaded(events, OrderEntity, orders, e.context, OrderBasicNested)

	return events
}
