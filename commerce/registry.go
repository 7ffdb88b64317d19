package commerce

import (
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// Definitions returns fresh definitions of all commerce entities.
func Definitions() []*entity.Definition {
	return []*entity.Definition{
		TaxDefinition(),
		TaxAreaRuleDefinition(),
		ProductDefinition(),
		ProductTranslationDefinition(),
		ShippingMethodDefinition(),
		ShippingMethodPriceDefinition(),
		CountryDefinition(),
		CountryTranslationDefinition(),
		CustomerDefinition(),
		CustomerGroupDefinition(),
		CustomerAddressDefinition(),
		PaymentMethodDefinition(),
		ShopDefinition(),
		OrderDefinition(),
		PluginDefinition(),
	}
}

// NewRegistry registers all commerce definitions and validates their references.
func NewRegistry() (*entity.Registry, error) {
	registry, err := entity.NewRegistry(Definitions()...)
	if err != nil {
		return nil, err
	}

	if err = registry.Validate(); err != nil {
		return nil, err
	}

	return registry, nil
}
