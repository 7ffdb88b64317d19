package commerce

// Entity names, which are also the table names.
const (
	TaxEntity                 = "tax"
	TaxAreaRuleEntity         = "tax_area_rule"
	ProductEntity             = "product"
	ProductTranslationEntity  = "product_translation"
	ShippingMethodEntity      = "shipping_method"
	ShippingMethodPriceEntity = "shipping_method_price"
	CountryEntity             = "country"
	CountryTranslationEntity  = "country_translation"
	CustomerEntity            = "customer"
	CustomerGroupEntity       = "customer_group"
	CustomerAddressEntity     = "customer_address"
	PaymentMethodEntity       = "payment_method"
	ShopEntity                = "shop"
	OrderEntity               = "order"
	PluginEntity              = "plugin"
)

const (
	basicLoadedSuffix  = ".basic.loaded"
	detailLoadedSuffix = ".detail.loaded"
)

func basicLoadedEventName(entityName string) string {
	return entityName + basicLoadedSuffix
}
