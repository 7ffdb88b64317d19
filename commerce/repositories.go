package commerce

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
)

// ErrNilRegistry is returned when repositories are wired without a registry.
var ErrNilRegistry = errors.New("nil entity registry supplied")

// Repositories bundles a repository per commerce entity.
type Repositories struct {
	Taxes                *repository.Repository[TaxBasic, TaxDetail]
	TaxAreaRules         *repository.Repository[TaxAreaRuleBasic, TaxAreaRuleBasic]
	Products             *repository.Repository[ProductBasic, ProductBasic]
	ShippingMethods      *repository.Repository[ShippingMethodBasic, ShippingMethodDetail]
	ShippingMethodPrices *repository.Repository[ShippingMethodPriceBasic, ShippingMethodPriceBasic]
	Countries            *repository.Repository[CountryBasic, CountryBasic]
	CountryTranslations  *repository.Repository[CountryTranslationBasic, CountryTranslationBasic]
	Customers            *repository.Repository[CustomerBasic, CustomerDetail]
	CustomerGroups       *repository.Repository[CustomerGroupBasic, CustomerGroupBasic]
	CustomerAddresses    *repository.Repository[CustomerAddressBasic, CustomerAddressBasic]
	PaymentMethods       *repository.Repository[PaymentMethodBasic, PaymentMethodBasic]
	Shops                *repository.Repository[ShopBasic, ShopBasic]
	Orders               *repository.Repository[OrderBasic, OrderBasic]
	Plugins              *repository.Repository[PluginBasic, PluginBasic]
}

// NewRepositories wires the repositories of all commerce entities on store. The registry must
// contain the commerce definitions, see NewRegistry. The options apply to every repository.
//
// Country translations are keyed by country and language, their repository only supports
// id searches, which return country ids.
//
//nolint:funlen
func NewRepositories(store repository.Store, registry *entity.Registry, opts ...repository.Option) (*Repositories, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	opts = append([]repository.Option{repository.WithRegistry(registry)}, opts...)
	r := &Repositories{}

	var err error

	if r.Taxes, err = newRepository(registry, TaxEntity, store, repository.Events[TaxBasic, TaxDetail]{
		DetailNested: TaxDetailNested,
	}, opts); err != nil {
		return nil, err
	}

	if r.TaxAreaRules, err = newRepository(registry, TaxAreaRuleEntity, store, repository.Events[TaxAreaRuleBasic, TaxAreaRuleBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.Products, err = newRepository(registry, ProductEntity, store, repository.Events[ProductBasic, ProductBasic]{
		BasicNested:  ProductBasicNested,
		DetailNested: ProductBasicNested,
	}, opts); err != nil {
		return nil, err
	}

	if r.ShippingMethods, err = newRepository(registry, ShippingMethodEntity, store, repository.Events[ShippingMethodBasic, ShippingMethodDetail]{
		DetailNested: ShippingMethodDetailNested,
	}, opts); err != nil {
		return nil, err
	}

	if r.ShippingMethodPrices, err = newRepository(registry, ShippingMethodPriceEntity, store, repository.Events[ShippingMethodPriceBasic, ShippingMethodPriceBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.Countries, err = newRepository(registry, CountryEntity, store, repository.Events[CountryBasic, CountryBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.CountryTranslations, err = newRepository(registry, CountryTranslationEntity, store, repository.Events[CountryTranslationBasic, CountryTranslationBasic]{
		IDSearchResultLoaded: func(result entity.IDSearchResult) entity.NestedEvent {
			return NewCountryTranslationIDSearchResultLoadedEvent(result)
		},
	}, opts); err != nil {
		return nil, err
	}

	if r.Customers, err = newRepository(registry, CustomerEntity, store, repository.Events[CustomerBasic, CustomerDetail]{
		BasicNested: CustomerBasicNested,
		DetailLoaded: func(customers entity.Collection[CustomerDetail], shopContext entity.ShopContext) entity.NestedEvent {
			return NewCustomerDetailLoadedEvent(customers, shopContext)
		},
	}, opts); err != nil {
		return nil, err
	}

	if r.CustomerGroups, err = newRepository(registry, CustomerGroupEntity, store, repository.Events[CustomerGroupBasic, CustomerGroupBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.CustomerAddresses, err = newRepository(registry, CustomerAddressEntity, store, repository.Events[CustomerAddressBasic, CustomerAddressBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.PaymentMethods, err = newRepository(registry, PaymentMethodEntity, store, repository.Events[PaymentMethodBasic, PaymentMethodBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.Shops, err = newRepository(registry, ShopEntity, store, repository.Events[ShopBasic, ShopBasic]{}, opts); err != nil {
		return nil, err
	}

	if r.Orders, err = newRepository(registry, OrderEntity, store, repository.Events[OrderBasic, OrderBasic]{
		BasicNested:  OrderBasicNested,
		DetailNested: OrderBasicNested,
	}, opts); err != nil {
		return nil, err
	}

	if r.Plugins, err = newRepository(registry, PluginEntity, store, repository.Events[PluginBasic, PluginBasic]{
		SearchResultLoaded: func(result entity.SearchResult[PluginBasic]) entity.NestedEvent {
			return NewPluginSearchResultLoadedEvent(result)
		},
	}, opts); err != nil {
		return nil, err
	}

	return r, nil
}

func newRepository[B entity.Identifiable, D entity.Identifiable](
	registry *entity.Registry,
	entityName string,
	store repository.Store,
	events repository.Events[B, D],
	opts []repository.Option,
) (*repository.Repository[B, D], error) {

	definition, err := registry.Get(entityName)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(definition, store, events, opts...)
	if err != nil {
		return nil, errors.Join(err, fmt.Errorf("repository of %q", entityName))
	}

	return repo, nil
}
