package commerce_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
)

func newRepositories(t *testing.T, store *fakeStore) (*commerce.Repositories, *eventRecorder) {
	t.Helper()

	recorder := &eventRecorder{}

	repositories, err := commerce.NewRepositories(store, testRegistry(t), repository.WithDispatcher(newDispatcher(recorder)))
	require.NoError(t, err)

	return repositories, recorder
}

func Test_NewRepositories_Errors(t *testing.T) {
	_, err := commerce.NewRepositories(&fakeStore{}, nil)
	assert.ErrorIs(t, err, commerce.ErrNilRegistry)

	incomplete, err := entity.NewRegistry(commerce.TaxDefinition())
	require.NoError(t, err)

	_, err = commerce.NewRepositories(&fakeStore{}, incomplete)
	assert.ErrorIs(t, err, entity.ErrUnknownEntity)

	_, err = commerce.NewRepositories(nil, testRegistry(t))
	assert.ErrorIs(t, err, repository.ErrNilStore)
}

func Test_Repositories_Customers_ReadDetail(t *testing.T) {
	store := &fakeStore{
		rows: map[string]entity.Rows{commerce.CustomerEntity: {customerRow()}},
		children: map[string]entity.Rows{
			commerce.CustomerAddressEntity: {addressRow(billingAddressID, "Ebbinghoff 10"), addressRow(shippingAddressID, "Hauptstraße 1")},
			commerce.OrderEntity:           {orderRow()},
		},
	}

	repositories, recorder := newRepositories(t, store)

	customers, err := repositories.Customers.ReadDetail(context.Background(), customerID)
	require.NoError(t, err)

	customer, ok := customers.Get(customerID)
	require.True(t, ok)
	assert.Equal(t, 2, customer.Addresses.Count())
	assert.Equal(t, []uuid.UUID{orderID}, customer.Orders.IDs())

	assert.Equal(t, []string{
		"customer.detail.loaded",
		"customer_group.basic.loaded",
		"payment_method.basic.loaded",
		"shop.basic.loaded",
		"shop.basic.loaded",
		"customer_address.basic.loaded",
		"customer_address.basic.loaded",
		"order.basic.loaded",
		"payment_method.basic.loaded",
	}, recorder.names)

	_, isCustomerEvent := recorder.events[0].(commerce.CustomerDetailLoadedEvent)
	assert.True(t, isCustomerEvent)
}

func Test_Repositories_Customers_ReadBasic(t *testing.T) {
	store := &fakeStore{rows: map[string]entity.Rows{commerce.CustomerEntity: {customerRow()}}}
	repositories, recorder := newRepositories(t, store)

	customers, err := repositories.Customers.ReadBasic(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customers.Count())

	assert.Equal(t, []string{
		"customer.basic.loaded",
		"customer_group.basic.loaded",
		"payment_method.basic.loaded",
		"shop.basic.loaded",
		"shop.basic.loaded",
		"customer_address.basic.loaded",
	}, recorder.names)
}

func Test_Repositories_Taxes_ReadDetail(t *testing.T) {
	store := &fakeStore{
		rows: map[string]entity.Rows{commerce.TaxEntity: {taxRow()}},
		children: map[string]entity.Rows{
			commerce.ProductEntity: {
				{"id": productID, "taxId": taxID, "price": "9.99", "name": "Shirt", "tax": nil},
			},
		},
	}

	repositories, recorder := newRepositories(t, store)

	taxes, err := repositories.Taxes.ReadDetail(context.Background(), taxID)
	require.NoError(t, err)

	tax, ok := taxes.Get(taxID)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{productID}, tax.Products.IDs())
	assert.Zero(t, tax.AreaRules.Count())

	assert.Equal(t, []string{"tax.detail.loaded", "product.basic.loaded"}, recorder.names)
}

func Test_Repositories_Plugins_Search(t *testing.T) {
	store := &fakeStore{
		ids: []uuid.UUID{pluginID},
		rows: map[string]entity.Rows{
			commerce.PluginEntity: {
				{"id": pluginID, "name": "SwagPaymentPaypal", "label": "PayPal", "version": "1.0.0", "active": true, "changes": `{"1.0.0":"initial"}`},
			},
		},
	}

	repositories, recorder := newRepositories(t, store)

	result, err := repositories.Plugins.Search(context.Background(), entity.NewCriteria())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total())

	plugin, ok := result.Get(pluginID)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"1.0.0": "initial"}, plugin.Changes)

	assert.Equal(t, []string{"plugin.basic.loaded", commerce.PluginSearchResultLoaded}, recorder.names)

	event, isPluginEvent := recorder.events[1].(commerce.PluginSearchResultLoadedEvent)
	require.True(t, isPluginEvent)
	assert.Equal(t, []uuid.UUID{pluginID}, event.Result().IDs())
	assert.Empty(t, event.Events())
}

func Test_Repositories_CountryTranslations_SearchIDs(t *testing.T) {
	store := &fakeStore{ids: []uuid.UUID{countryID}}
	repositories, recorder := newRepositories(t, store)

	criteria := entity.NewCriteria()

	result, err := repositories.CountryTranslations.SearchIDs(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{countryID}, result.IDs())
	assert.Equal(t, []string{commerce.CountryTranslationEntity}, store.searched)

	require.Len(t, recorder.events, 1)
	event, ok := recorder.events[0].(commerce.CountryTranslationIDSearchResultLoadedEvent)
	require.True(t, ok)
	assert.Equal(t, "country_translation.id.search.result.loaded", event.Name())
	assert.Same(t, criteria, event.Result().Criteria())
	assert.Equal(t, entity.DefaultShopContext(), event.Context())
	assert.Empty(t, event.Events())
}

func Test_Repositories_Taxes_Upsert(t *testing.T) {
	store := &fakeStore{}
	repositories, recorder := newRepositories(t, store)

	event, err := repositories.Taxes.Upsert(context.Background(), entity.Row{
		"id":      taxID,
		"taxRate": "19",
		"name":    "standard",
		"products": []any{
			map[string]any{"price": "9.99", "name": "Shirt"},
		},
		"areaRules": []any{
			map[string]any{"taxRate": "7", "name": "reduced", "countryId": countryID},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "tax.written", event.Name())

	assert.ElementsMatch(t, []string{
		"tax.written",
		"product.written",
		"product_translation.written",
		"tax_area_rule.written",
	}, recorder.names)

	for _, command := range store.commands {
		if command.EntityName == commerce.ProductEntity {
			assert.Equal(t, taxID, command.Data["tax_id"])
		}
	}
}
